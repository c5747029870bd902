package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"demoforge/internal/session"
)

const sessionColumns = `id, repository_url, project_name, owner, status, error_message,
    analysis_json, suggestions_json, uploads_json, stitched_key,
    stitch_processed, stitch_total, final_artifacts_json, thumbnail_key,
    demo_url, created_at, updated_at, expires_at`

func scanSession(scanner interface{ Scan(dest ...any) error }) (*session.Session, error) {
	var (
		sess          session.Session
		status        string
		analysisJSON  sql.NullString
		suggJSON      sql.NullString
		uploadsJSON   sql.NullString
		artifactsJSON sql.NullString
		createdAt     string
		updatedAt     string
		expiresAt     int64
	)
	if err := scanner.Scan(
		&sess.ID,
		&sess.RepositoryURL,
		&sess.ProjectName,
		&sess.Owner,
		&status,
		&sess.ErrorMessage,
		&analysisJSON,
		&suggJSON,
		&uploadsJSON,
		&sess.StitchedKey,
		&sess.StitchProcessed,
		&sess.StitchTotal,
		&artifactsJSON,
		&sess.ThumbnailKey,
		&sess.DemoURL,
		&createdAt,
		&updatedAt,
		&expiresAt,
	); err != nil {
		return nil, err
	}

	parsed, ok := session.ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown session status %q", status)
	}
	sess.Status = parsed

	if analysisJSON.Valid && analysisJSON.String != "" {
		var analysis session.Analysis
		if err := json.Unmarshal([]byte(analysisJSON.String), &analysis); err != nil {
			return nil, fmt.Errorf("decode analysis: %w", err)
		}
		sess.Analysis = &analysis
	}
	if suggJSON.Valid && suggJSON.String != "" {
		if err := json.Unmarshal([]byte(suggJSON.String), &sess.Suggestions); err != nil {
			return nil, fmt.Errorf("decode suggestions: %w", err)
		}
	}
	sess.Uploads = map[int]*session.UploadRecord{}
	if uploadsJSON.Valid && uploadsJSON.String != "" {
		if err := json.Unmarshal([]byte(uploadsJSON.String), &sess.Uploads); err != nil {
			return nil, fmt.Errorf("decode uploads: %w", err)
		}
	}
	if artifactsJSON.Valid && artifactsJSON.String != "" {
		if err := json.Unmarshal([]byte(artifactsJSON.String), &sess.FinalArtifacts); err != nil {
			return nil, fmt.Errorf("decode final artifacts: %w", err)
		}
	}

	var err error
	if sess.CreatedAt, err = parseTimeString(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if sess.UpdatedAt, err = parseTimeString(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	sess.ExpiresAt = time.Unix(expiresAt, 0).UTC()

	return &sess, nil
}

func encodeSession(sess *session.Session) (analysis, suggestions, uploads, artifacts any, err error) {
	analysis, err = marshalNullable(sess.Analysis == nil, sess.Analysis)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode analysis: %w", err)
	}
	suggestions, err = marshalNullable(len(sess.Suggestions) == 0, sess.Suggestions)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode suggestions: %w", err)
	}
	uploads, err = marshalNullable(len(sess.Uploads) == 0, sess.Uploads)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode uploads: %w", err)
	}
	artifacts, err = marshalNullable(len(sess.FinalArtifacts) == 0, sess.FinalArtifacts)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode final artifacts: %w", err)
	}
	return analysis, suggestions, uploads, artifacts, nil
}

// sessionImage is a comparable snapshot of the columns Mutate rewrites. The
// JSON fields only ever hold nil or string, so struct equality is safe.
type sessionImage struct {
	repositoryURL   string
	projectName     string
	owner           string
	status          session.Status
	errorMessage    string
	analysis        any
	suggestions     any
	uploads         any
	artifacts       any
	stitchedKey     string
	stitchProcessed int
	stitchTotal     int
	thumbnailKey    string
	demoURL         string
}

func imageOf(sess *session.Session) (sessionImage, error) {
	analysis, suggestions, uploads, artifacts, err := encodeSession(sess)
	if err != nil {
		return sessionImage{}, err
	}
	return sessionImage{
		repositoryURL:   sess.RepositoryURL,
		projectName:     sess.ProjectName,
		owner:           sess.Owner,
		status:          sess.Status,
		errorMessage:    sess.ErrorMessage,
		analysis:        analysis,
		suggestions:     suggestions,
		uploads:         uploads,
		artifacts:       artifacts,
		stitchedKey:     sess.StitchedKey,
		stitchProcessed: sess.StitchProcessed,
		stitchTotal:     sess.StitchTotal,
		thumbnailKey:    sess.ThumbnailKey,
		demoURL:         sess.DemoURL,
	}, nil
}

func marshalNullable(empty bool, value any) (any, error) {
	if empty {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2-1)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
