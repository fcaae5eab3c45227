package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/listing"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/observability"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

// BookService manages the digital library.
type BookService interface {
	List(ctx context.Context, query dto.CatalogQuery) ([]models.Book, listing.Meta, error)
	Get(ctx context.Context, id uint) (models.Book, error)
	Create(ctx context.Context, actor Actor, payload dto.BookCreateRequest, file, cover *multipart.FileHeader) (models.Book, error)
	Download(ctx context.Context, id uint) (dto.DownloadResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type bookService struct {
	repo      repository.BookRepository
	storage   FileStorage
	maxBytes  int64
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewBookService constructs the library service.
func NewBookService(repo repository.BookRepository, storage FileStorage, maxFileMB int, validate *validator.Validate, logger zerolog.Logger) BookService {
	return &bookService{
		repo:      repo,
		storage:   storage,
		maxBytes:  megabytes(maxFileMB),
		validator: validate,
		logger:    logger.With().Str("component", "book_service").Logger(),
	}
}

func (s *bookService) List(ctx context.Context, query dto.CatalogQuery) ([]models.Book, listing.Meta, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, listing.Meta{}, err
	}

	books, err := s.repo.List(ctx, repository.CatalogFilter{
		Subject:  query.Subject,
		Grade:    query.Grade,
		Language: query.Language,
	})
	if err != nil {
		return nil, listing.Meta{}, err
	}

	books = listing.Filter(books, func(book models.Book) bool {
		return listing.MatchesSearch(query.Search, book.Title, book.Author, book.Description)
	})
	page, meta := listing.Paginate(books, query.Page, query.PageSize)
	return page, meta, nil
}

func (s *bookService) Get(ctx context.Context, id uint) (models.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Book{}, ErrBookNotFound
		}
		return models.Book{}, err
	}
	return book, nil
}

func (s *bookService) Create(ctx context.Context, actor Actor, payload dto.BookCreateRequest, file, cover *multipart.FileHeader) (models.Book, error) {
	if !actor.IsTeacher() {
		return models.Book{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return models.Book{}, err
	}
	if file == nil {
		return models.Book{}, ErrFileRequired
	}
	if s.storage == nil {
		return models.Book{}, ErrMediaUnavailable
	}

	fileURL, err := s.store(ctx, file, isPDFMime)
	if err != nil {
		return models.Book{}, err
	}

	book := models.Book{
		Title:       strings.TrimSpace(payload.Title),
		Author:      strings.TrimSpace(payload.Author),
		Subject:     strings.TrimSpace(payload.Subject),
		Grade:       strings.TrimSpace(payload.Grade),
		Language:    payload.Language,
		Description: strings.TrimSpace(payload.Description),
		FileURL:     fileURL,
		UploadedBy:  actor.ID,
	}

	if cover != nil {
		coverURL, err := s.store(ctx, cover, isImageMime)
		if err != nil {
			return models.Book{}, err
		}
		book.CoverURL = coverURL
	}

	if err := s.repo.Create(ctx, &book); err != nil {
		return models.Book{}, err
	}

	s.logger.Info().Uint("book_id", book.ID).Str("language", book.Language).Msg("book added to library")
	return book, nil
}

func (s *bookService) Download(ctx context.Context, id uint) (dto.DownloadResponse, error) {
	if err := s.repo.IncrementDownloads(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DownloadResponse{}, ErrBookNotFound
		}
		return dto.DownloadResponse{}, err
	}

	book, err := s.Get(ctx, id)
	if err != nil {
		return dto.DownloadResponse{}, err
	}
	return dto.DownloadResponse{URL: book.FileURL, Downloads: book.Downloads}, nil
}

func (s *bookService) Delete(ctx context.Context, actor Actor, id uint) error {
	book, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsTeacher() || !actor.Owns(book.UploadedBy) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	s.logger.Info().Uint("book_id", id).Msg("book removed from library")
	return nil
}

func (s *bookService) store(ctx context.Context, file *multipart.FileHeader, allowed func(string) bool) (string, error) {
	handle, err := openUpload(file, s.maxBytes, allowed)
	if err != nil {
		observability.MediaUploads().WithLabelValues("book", "rejected").Inc()
		return "", err
	}
	defer handle.Close()

	url, err := s.storage.Upload(ctx, handle.name, handle.reader)
	if err != nil {
		observability.MediaUploads().WithLabelValues("book", "error").Inc()
		return "", err
	}

	observability.MediaUploads().WithLabelValues("book", "stored").Inc()
	return url, nil
}
