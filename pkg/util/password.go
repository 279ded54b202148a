package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	passwordCost = 10

	// MaxPasswordBytes bcrypt 只使用前 72 字节
	MaxPasswordBytes = 72
)

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword 生成 bcrypt 哈希；超过 72 字节的密码直接拒绝而不是被静默截断
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
