// Package guard はリダイレクト先とリファラの許可リスト判定を提供します。
//
// どちらの判定も副作用のない述語で、拒否は false で表します。
// 比較前に次の正規化を行います。
//   - 前後の空白を除去し、制御文字・バックスラッシュを含む値は拒否
//   - スキーム・ホストは小文字化し、既定ポート（http:80 / https:443）は省略
//   - パスが空なら "/" とし、ルート以外の末尾スラッシュ 1 つは無視
//   - クエリとフラグメントは比較対象外
//   - プロトコル相対（"//host"）は常に拒否
package guard

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidEntry は許可リストの要素が正規化できない場合のエラーです。
var ErrInvalidEntry = errors.New("invalid allow-list entry")

// IsSafeRedirect は target がオープンリダイレクトにならない遷移先かを判定します。
// "/" で始まるホスト相対パス、または allowedHosts に含まれるホストの http(s) URL のみ許可します。
func IsSafeRedirect(target string, allowedHosts []string) bool {
	raw, ok := precheck(target)
	if !ok {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil || u.User != nil || u.Opaque != "" {
		return false
	}

	if u.Scheme == "" && u.Host == "" {
		return strings.HasPrefix(raw, "/")
	}

	scheme := strings.ToLower(u.Scheme)
	if !isWebScheme(scheme) || u.Host == "" {
		return false
	}
	host := canonicalHost(scheme, u.Host)
	for _, entry := range allowedHosts {
		if allowed, ok := hostEntry(scheme, entry); ok && allowed == host {
			return true
		}
	}
	return false
}

// IsAllowedOrigin はリクエストのリファラが allowedOrigins のいずれかと一致するかを判定します。
func IsAllowedOrigin(referrer string, allowedOrigins []string) bool {
	ref, err := CanonicalOrigin(referrer)
	if err != nil {
		return false
	}
	for _, entry := range allowedOrigins {
		allowed, err := CanonicalOrigin(entry)
		if err == nil && allowed == ref {
			return true
		}
	}
	return false
}

// CanonicalOrigin は絶対 http(s) URL を比較用の "scheme://host/path" 形式に正規化します。
func CanonicalOrigin(raw string) (string, error) {
	value, ok := precheck(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntry, raw)
	}
	u, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if !isWebScheme(scheme) || u.Host == "" || u.User != nil || u.Opaque != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntry, raw)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return scheme + "://" + canonicalHost(scheme, u.Host) + path, nil
}

// ValidateHosts はリダイレクト許可ホストの各要素が解釈可能かを検証します。
func ValidateHosts(entries []string) error {
	for _, entry := range entries {
		_, okHTTPS := hostEntry("https", entry)
		_, okHTTP := hostEntry("http", entry)
		if !okHTTPS && !okHTTP {
			return fmt.Errorf("%w: %q", ErrInvalidEntry, entry)
		}
	}
	return nil
}

// ValidateOrigins はリファラ許可リストの各要素が正規化できるかを検証します。
func ValidateOrigins(entries []string) error {
	for _, entry := range entries {
		if _, err := CanonicalOrigin(entry); err != nil {
			return err
		}
	}
	return nil
}

func precheck(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" || strings.HasPrefix(value, "//") {
		return "", false
	}
	for _, r := range value {
		if r < 0x20 || r == 0x7f || r == '\\' {
			return "", false
		}
	}
	return value, true
}

// hostEntry は "host[:port]" または "scheme://host[:port]" 形式の許可ホストを正規化します。
func hostEntry(scheme, entry string) (string, bool) {
	value, ok := precheck(entry)
	if !ok {
		return "", false
	}
	if strings.Contains(value, "://") {
		u, err := url.Parse(value)
		if err != nil || u.Host == "" {
			return "", false
		}
		entryScheme := strings.ToLower(u.Scheme)
		if !isWebScheme(entryScheme) || entryScheme != scheme {
			return "", false
		}
		return canonicalHost(scheme, u.Host), true
	}
	if strings.ContainsAny(value, "/?#@") {
		return "", false
	}
	return canonicalHost(scheme, value), true
}

func canonicalHost(scheme, host string) string {
	h := strings.ToLower(host)
	switch scheme {
	case "http":
		h = strings.TrimSuffix(h, ":80")
	case "https":
		h = strings.TrimSuffix(h, ":443")
	}
	return h
}

func isWebScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}
