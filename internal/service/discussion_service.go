package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/listing"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

// ErrInvalidParent indicates a reply targets a comment from another discussion.
var ErrInvalidParent = errors.New("parent comment does not belong to this discussion")

// DiscussionService exposes the forum use-cases.
type DiscussionService interface {
	List(ctx context.Context, query dto.DiscussionQuery) ([]models.Discussion, listing.Meta, error)
	Get(ctx context.Context, id uint) (dto.DiscussionResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.DiscussionCreateRequest) (models.Discussion, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	Comments(ctx context.Context, discussionID uint) ([]*dto.CommentNode, error)
	AddComment(ctx context.Context, actor Actor, discussionID uint, payload dto.CommentCreateRequest) (models.Comment, error)
	DeleteComment(ctx context.Context, actor Actor, id uint) error
}

type discussionService struct {
	repo      repository.DiscussionRepository
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
}

// NewDiscussionService constructs a discussion service.
func NewDiscussionService(repo repository.DiscussionRepository, validate *validator.Validate, logger zerolog.Logger) DiscussionService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("br")

	return &discussionService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "discussion_service").Logger(),
		sanitizer: policy,
	}
}

func (s *discussionService) List(ctx context.Context, query dto.DiscussionQuery) ([]models.Discussion, listing.Meta, error) {
	discussions, err := s.repo.List(ctx, repository.DiscussionFilter{Subject: query.Subject})
	if err != nil {
		return nil, listing.Meta{}, err
	}

	discussions = listing.Filter(discussions, func(discussion models.Discussion) bool {
		return listing.MatchesSearch(query.Search, discussion.Title, discussion.Body)
	})
	page, meta := listing.Paginate(discussions, query.Page, query.PageSize)
	return page, meta, nil
}

func (s *discussionService) Get(ctx context.Context, id uint) (dto.DiscussionResponse, error) {
	discussion, err := s.load(ctx, id)
	if err != nil {
		return dto.DiscussionResponse{}, err
	}

	tree, err := s.Comments(ctx, id)
	if err != nil {
		return dto.DiscussionResponse{}, err
	}
	return dto.DiscussionResponse{Discussion: discussion, Comments: tree}, nil
}

func (s *discussionService) Create(ctx context.Context, actor Actor, payload dto.DiscussionCreateRequest) (models.Discussion, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Discussion{}, err
	}

	title := strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(payload.Title))
	body := strings.TrimSpace(s.sanitizer.Sanitize(payload.Body))
	if title == "" || body == "" {
		return models.Discussion{}, fmt.Errorf("%w: discussion is empty after sanitization", ErrInvalidInput)
	}

	discussion := models.Discussion{
		Title:    title,
		Body:     body,
		Subject:  strings.TrimSpace(payload.Subject),
		AuthorID: actor.ID,
	}
	if err := s.repo.Create(ctx, &discussion); err != nil {
		return models.Discussion{}, err
	}

	s.logger.Info().Uint("discussion_id", discussion.ID).Uint("author_id", actor.ID).Msg("discussion created")
	return discussion, nil
}

func (s *discussionService) Delete(ctx context.Context, actor Actor, id uint) error {
	discussion, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(discussion.AuthorID) && !actor.IsTeacher() {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDiscussionNotFound
		}
		return err
	}

	s.logger.Info().Uint("discussion_id", id).Uint("deleted_by", actor.ID).Msg("discussion deleted")
	return nil
}

func (s *discussionService) Comments(ctx context.Context, discussionID uint) ([]*dto.CommentNode, error) {
	if _, err := s.load(ctx, discussionID); err != nil {
		return nil, err
	}

	comments, err := s.repo.ListComments(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(comments), nil
}

func (s *discussionService) AddComment(ctx context.Context, actor Actor, discussionID uint, payload dto.CommentCreateRequest) (models.Comment, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Comment{}, err
	}
	if _, err := s.load(ctx, discussionID); err != nil {
		return models.Comment{}, err
	}

	if payload.ParentID != nil {
		parent, err := s.repo.GetComment(ctx, *payload.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Comment{}, ErrInvalidParent
			}
			return models.Comment{}, err
		}
		if parent.DiscussionID != discussionID {
			return models.Comment{}, ErrInvalidParent
		}
	}

	body := strings.TrimSpace(s.sanitizer.Sanitize(payload.Body))
	if body == "" {
		return models.Comment{}, fmt.Errorf("%w: comment is empty after sanitization", ErrInvalidInput)
	}

	comment := models.Comment{
		DiscussionID: discussionID,
		ParentID:     payload.ParentID,
		AuthorID:     actor.ID,
		Body:         body,
	}
	if err := s.repo.CreateComment(ctx, &comment); err != nil {
		return models.Comment{}, err
	}

	s.logger.Info().Uint("comment_id", comment.ID).Uint("discussion_id", discussionID).Msg("comment added")
	return comment, nil
}

func (s *discussionService) DeleteComment(ctx context.Context, actor Actor, id uint) error {
	comment, err := s.repo.GetComment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if !actor.Owns(comment.AuthorID) && !actor.IsTeacher() {
		return ErrForbidden
	}

	comments, err := s.repo.ListComments(ctx, comment.DiscussionID)
	if err != nil {
		return err
	}
	ids := descendantIDs(comments, comment.ID)

	if err := s.repo.DeleteComments(ctx, comment.DiscussionID, ids); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	s.logger.Info().Uint("comment_id", id).Int("removed", len(ids)).Msg("comment deleted")
	return nil
}

func (s *discussionService) load(ctx context.Context, id uint) (models.Discussion, error) {
	discussion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Discussion{}, ErrDiscussionNotFound
		}
		return models.Discussion{}, err
	}
	return discussion, nil
}

// BuildCommentTree nests comments under their parents. Comments whose parent is absent become
// roots. Input order is preserved at every level.
func BuildCommentTree(comments []models.Comment) []*dto.CommentNode {
	nodes := make(map[uint]*dto.CommentNode, len(comments))
	for _, comment := range comments {
		nodes[comment.ID] = dto.NewCommentNode(comment)
	}

	roots := make([]*dto.CommentNode, 0, len(comments))
	for _, comment := range comments {
		node := nodes[comment.ID]
		if comment.ParentID != nil {
			if parent, ok := nodes[*comment.ParentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// descendantIDs returns rootID and every comment below it.
func descendantIDs(comments []models.Comment, rootID uint) []uint {
	children := make(map[uint][]uint, len(comments))
	for _, comment := range comments {
		if comment.ParentID != nil {
			children[*comment.ParentID] = append(children[*comment.ParentID], comment.ID)
		}
	}

	ids := []uint{rootID}
	seen := map[uint]struct{}{rootID: {}}
	for i := 0; i < len(ids); i++ {
		for _, child := range children[ids[i]] {
			if _, ok := seen[child]; ok {
				continue
			}
			seen[child] = struct{}{}
			ids = append(ids, child)
		}
	}
	return ids
}
