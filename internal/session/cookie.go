package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// CookieName はセッションCookieの名前。
const CookieName = "hm_session"

// Codec はセッションIDと署名付きCookie値の相互変換を行う。
// Cookie値は "id.HMAC-SHA256(id, secret)" の形式で、
// 署名が一致しない値はセッション不在として扱われる。
type Codec struct {
	secret []byte
}

// NewCodec はCodecを生成する。
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode はセッションIDに署名を付与したCookie値を返す。
func (c *Codec) Encode(id string) string {
	return id + "." + c.sign(id)
}

// Decode はCookie値の署名を検証し、セッションIDを取り出す。
// 形式不正または署名不一致の場合はエラーを返す。
func (c *Codec) Decode(value string) (string, error) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", fmt.Errorf("malformed session cookie")
	}

	expected := c.sign(id)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", fmt.Errorf("session cookie signature mismatch")
	}

	return id, nil
}

// sign はセッションIDのHMAC-SHA256署名を16進文字列で返す。
func (c *Codec) sign(id string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}
