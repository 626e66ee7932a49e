package model

import "time"

type Artifact struct {
	ID          int64
	Name        string
	SizeInBytes int64
	DownloadURL string
}

// Secret carries only metadata. The API never returns secret values.
type Secret struct {
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicKey is the repository key that secret values are sealed to.
type PublicKey struct {
	KeyID string
	Key   string
}
