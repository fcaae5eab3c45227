package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

func TestContentHandler_CreateAndVisibility(t *testing.T) {
	env := newTestEnv(t)

	note := dto.ContentCreateRequest{Title: "Photosynthesis notes", Subject: "science", Grade: "9", Type: "note"}
	resp, _ := env.do(t, http.MethodPost, "/api/content", studentActor, note)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/content", teacherActor, note)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var draft models.Content
	decodeData(t, body, &draft)
	require.False(t, draft.Published)

	resp, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/content/%d", draft.ID), studentActor, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/content", teacherActor, dto.ContentCreateRequest{Title: "Past paper", Subject: "science", Type: "pdf"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.upload(t, "/api/content", teacherActor, map[string]string{
		"title":     "Past paper 2023",
		"subject":   "science",
		"type":      "pdf",
		"published": "true",
	}, "file", "paper.pdf", pdfHeader)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var paper models.Content
	decodeData(t, body, &paper)
	require.True(t, paper.Published)
	require.Equal(t, "https://files.example.com/paper.pdf", paper.FileURL)
	require.Equal(t, []string{"paper.pdf"}, env.files.uploads)

	resp, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/content/%d", paper.ID), studentActor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var viewed models.Content
	decodeData(t, body, &viewed)
	require.Equal(t, 1, viewed.Views)

	resp, body = env.do(t, http.MethodGet, "/api/content", studentActor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []models.Content
	decodeData(t, body, &listed)
	require.Len(t, listed, 1)
	require.Equal(t, paper.ID, listed[0].ID)
}

func TestBookHandler_UploadAndDownload(t *testing.T) {
	env := newTestEnv(t)
	fields := map[string]string{"title": "Madol Doova", "author": "Martin Wickramasinghe", "subject": "literature", "language": "sinhala"}

	resp, _ := env.upload(t, "/api/books", teacherActor, fields, "", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.upload(t, "/api/books", teacherActor, fields, "file", "notes.txt", []byte("plain text is not a book"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.upload(t, "/api/books", teacherActor, fields, "file", "madol-doova.pdf", pdfHeader)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var book models.Book
	decodeData(t, body, &book)
	require.Equal(t, "https://files.example.com/madol-doova.pdf", book.FileURL)

	path := fmt.Sprintf("/api/books/%d/download", book.ID)
	for i := 1; i <= 2; i++ {
		resp, body = env.do(t, http.MethodPost, path, studentActor, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var download dto.DownloadResponse
		decodeData(t, body, &download)
		require.Equal(t, i, download.Downloads)
		require.Equal(t, book.FileURL, download.URL)
	}

	resp, _ = env.do(t, http.MethodPost, "/api/books/999/download", studentActor, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVideoHandler_UploadAndDelete(t *testing.T) {
	env := newTestEnv(t)
	fields := map[string]string{"title": "Sinhala grammar lesson", "subject": "sinhala", "duration_seconds": "312.5"}

	resp, _ := env.upload(t, "/api/videos", studentActor, fields, "video", "lesson.mp4", mp4Header)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.upload(t, "/api/videos", teacherActor, fields, "video", "lesson.txt", []byte("this is not a video"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.upload(t, "/api/videos", teacherActor, fields, "", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.upload(t, "/api/videos", teacherActor, fields, "video", "lesson.mp4", mp4Header)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var video dto.VideoResponse
	decodeData(t, body, &video)
	require.Equal(t, "learning-platform/videos/lesson-1", video.PublicID)
	require.InDelta(t, 312.5, video.DurationSeconds, 0.001)
	require.NotEmpty(t, video.StreamURL)
	require.NotEmpty(t, video.ThumbnailURL)

	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/videos/%d", video.ID), &testActor{id: 8, role: "teacher"}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/videos/%d", video.ID), teacherActor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{video.PublicID}, env.videos.destroyed)

	resp, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/videos/%d", video.ID), studentActor, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
