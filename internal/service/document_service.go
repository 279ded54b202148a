package service

import (
	"context"
	"io"
	"strings"

	"researchhub/internal/completion"
	"researchhub/internal/docx"
	"researchhub/internal/mail"
	"researchhub/internal/model"
	"researchhub/internal/parser"
	"researchhub/internal/prompt"
	"researchhub/internal/storage"
	"researchhub/pkg/apperr"

	"go.uber.org/zap"
)

const noContent = "No content generated"

// ObjectStore is satisfied by the GCS and local storage backends.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

type ScholarSearcher interface {
	Search(ctx context.Context, q string) ([]model.ScholarResult, error)
}

// DocumentService backs the stateless proxies: conversion, plagiarism
// check, scholar search, email and uploads.
type DocumentService struct {
	llm     completion.Completer
	scholar ScholarSearcher
	mailer  mail.Sender
	store   ObjectStore
	logger  *zap.Logger
}

func NewDocumentService(llm completion.Completer, scholar ScholarSearcher, mailer mail.Sender, store ObjectStore, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		llm:     llm,
		scholar: scholar,
		mailer:  mailer,
		store:   store,
		logger:  logger.Named("document"),
	}
}

// Convert rewrites raw text into the target format.
func (s *DocumentService) Convert(ctx context.Context, text, format string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperr.Validation("text is required")
	}
	if strings.TrimSpace(format) == "" {
		return "", apperr.Validation("format is required")
	}
	out, err := s.llm.Complete(ctx, completion.PurposeConvert, prompt.ConvertDocument(text, format))
	if err != nil {
		return "", err
	}
	out = parser.ParseDocument(out)
	if out == "" {
		return noContent, nil
	}
	return out, nil
}

// ConvertDocx extracts the text of a .docx upload and converts it.
func (s *DocumentService) ConvertDocx(ctx context.Context, data []byte, format string) (string, error) {
	text, err := docx.ExtractText(data)
	if err != nil {
		return "", err
	}
	return s.Convert(ctx, text, format)
}

func (s *DocumentService) CheckPlagiarism(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperr.Validation("text is required")
	}
	out, err := s.llm.Complete(ctx, completion.PurposePlagiarism, prompt.PlagiarismCheck(text))
	if err != nil {
		return "", err
	}
	return parser.ParseDocument(out), nil
}

func (s *DocumentService) SearchScholar(ctx context.Context, q string) ([]model.ScholarResult, error) {
	return s.scholar.Search(ctx, q)
}

func (s *DocumentService) SendEmail(ctx context.Context, msg mail.Message) error {
	if !strings.Contains(msg.To, "@") {
		return apperr.Validation("a valid recipient address is required")
	}
	if strings.TrimSpace(msg.Subject) == "" || strings.TrimSpace(msg.Text) == "" {
		return apperr.Validation("subject and text are required")
	}
	return s.mailer.Send(ctx, msg)
}

// Upload stores a file under the user's prefix and returns its location.
// Existing objects are never overwritten.
func (s *DocumentService) Upload(ctx context.Context, userID int64, name, contentType string, r io.Reader) (string, error) {
	key, err := storage.ObjectKey(userID, name)
	if err != nil {
		return "", err
	}
	loc, err := s.store.Put(ctx, key, contentType, r)
	if err != nil {
		return "", err
	}
	s.logger.Info("File uploaded", zap.Int64("user_id", userID), zap.String("key", key))
	return loc, nil
}
