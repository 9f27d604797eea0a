package dto

import "time"

// ExportJobResponse describes a background export. DownloadURL is set once the
// file is rendered and stays valid until ExpiresAt.
type ExportJobResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Format      string     `json:"format"`
	Rows        int        `json:"rows"`
	Error       string     `json:"error,omitempty"`
	DownloadURL string     `json:"download_url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}
