package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrLinkExpired    = errors.New("link expired")
	ErrLinkInvalid    = errors.New("invalid link")
)

// Memory is an in-process blob store for local runs without a bucket. Its
// download links carry a token signed with a key that lives as long as the
// objects do.
type Memory struct {
	mu         sync.RWMutex
	objects    map[string]memoryObject
	baseURL    string
	signingKey []byte
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemory(baseURL string) *Memory {
	key := make([]byte, 32)
	_, _ = rand.Read(key)
	return &Memory{objects: make(map[string]memoryObject), baseURL: baseURL, signingKey: key}
}

func (m *Memory) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("object %s: %w", key, ErrObjectNotFound)
	}
	claims := jwt.RegisteredClaims{
		Subject:   key,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expires)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", key, err)
	}
	return m.baseURL + "/" + key + "?token=" + url.QueryEscape(token), nil
}

// Open returns the object behind a link issued by PresignGet.
func (m *Memory) Open(key, token string) ([]byte, string, error) {
	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return m.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(key),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, "", ErrLinkExpired
	case err != nil:
		return nil, "", ErrLinkInvalid
	}

	data, contentType, ok := m.Get(key)
	if !ok {
		return nil, "", fmt.Errorf("object %s: %w", key, ErrObjectNotFound)
	}
	return data, contentType, nil
}

func (m *Memory) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.data, obj.contentType, ok
}
