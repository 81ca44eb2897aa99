// Package sharecodec embeds a shared list snapshot in a URL-safe token so a
// share link keeps working without a server.
package sharecodec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"lista-zakupow/internal/models"
)

// DataParam is the query parameter carrying the encoded payload.
const DataParam = "data"

var ErrMalformed = errors.New("malformed share payload")

func Encode(p models.SharedPayload) (string, error) {
	if p.Items == nil {
		p.Items = []models.ShoppingItem{}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal share payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode accepts the URL-safe form produced by Encode and, for links made by
// older clients, standard padded base64.
func Decode(token string) (models.SharedPayload, error) {
	var p models.SharedPayload

	token = strings.TrimSpace(token)
	if token == "" {
		return p, ErrMalformed
	}

	raw, err := decodeBase64(token)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if p.Items == nil || p.CreatedAt <= 0 || p.UpdatedAt <= 0 {
		return models.SharedPayload{}, fmt.Errorf("%w: missing fields", ErrMalformed)
	}
	return p, nil
}

func decodeBase64(token string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		raw, err := enc.DecodeString(token)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// ShareURL builds <base>/s/<shareID>, adding the data parameter when token is
// not empty.
func ShareURL(base, shareID, token string) string {
	u := strings.TrimRight(base, "/") + "/s/" + url.PathEscape(shareID)
	if token != "" {
		u += "?" + DataParam + "=" + url.QueryEscape(token)
	}
	return u
}

// ParseShareURL extracts the share id and the optional data token.
func ParseShareURL(raw string) (shareID, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid share url: %w", err)
	}
	path := strings.TrimRight(u.Path, "/")
	idx := strings.LastIndex(path, "/s/")
	if idx < 0 || idx+3 >= len(path) {
		return "", "", fmt.Errorf("invalid share url: no share id in %q", u.Path)
	}
	shareID, err = url.PathUnescape(path[idx+3:])
	if err != nil {
		return "", "", fmt.Errorf("invalid share url: %w", err)
	}
	return shareID, u.Query().Get(DataParam), nil
}
