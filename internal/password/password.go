// Package password はパスワードのソルト生成・ハッシュ化・照合を提供します。
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// SaltBytes はソルトの乱数バイト数です（hex 化すると 2 倍の文字数になります）。
const SaltBytes = 32

// argon2id のパラメータは保存済みハッシュと互換性を保つため固定です。
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
)

// GenerateSalt は暗号論的乱数からユーザーごとのソルトを生成します。
func GenerateSalt() (string, error) {
	buf := make([]byte, SaltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash は password と salt を連結した値から argon2id ダイジェストを計算します。
// 同じ入力には常に同じ値を返します。
func Hash(password, salt string) string {
	key := argon2.IDKey([]byte(password+salt), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(key)
}

// Verify は保存済みダイジェストと再計算した値を定数時間で比較します。
func Verify(password, salt, storedDigest string) bool {
	candidate := Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedDigest)) == 1
}
