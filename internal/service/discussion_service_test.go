package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/repository"
)

func newDiscussionService(t *testing.T) DiscussionService {
	t.Helper()
	db := setupServiceDB(t)
	return NewDiscussionService(repository.NewDiscussionRepository(db), newTestValidator(), zerolog.Nop())
}

func uintPtr(v uint) *uint { return &v }

func TestCreateDiscussionSanitizesInput(t *testing.T) {
	svc := newDiscussionService(t)

	discussion, err := svc.Create(context.Background(), student(10), dto.DiscussionCreateRequest{
		Title:   "<b>Algebra</b> help",
		Body:    "<p>How do I factorise?</p><script>alert(1)</script>",
		Subject: "mathematics",
	})
	require.NoError(t, err)
	require.Equal(t, "Algebra help", discussion.Title)
	require.Equal(t, "<p>How do I factorise?</p>", discussion.Body)

	_, err = svc.Create(context.Background(), student(10), dto.DiscussionCreateRequest{
		Title: "Only script",
		Body:  "<script>alert(1)</script>",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCommentsFormATree(t *testing.T) {
	svc := newDiscussionService(t)
	ctx := context.Background()
	discussion, err := svc.Create(ctx, student(10), dto.DiscussionCreateRequest{Title: "Photosynthesis", Body: "Questions here"})
	require.NoError(t, err)

	first, err := svc.AddComment(ctx, student(11), discussion.ID, dto.CommentCreateRequest{Body: "first"})
	require.NoError(t, err)
	reply, err := svc.AddComment(ctx, teacher(1), discussion.ID, dto.CommentCreateRequest{Body: "reply", ParentID: uintPtr(first.ID)})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, student(10), discussion.ID, dto.CommentCreateRequest{Body: "nested", ParentID: uintPtr(reply.ID)})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, student(12), discussion.ID, dto.CommentCreateRequest{Body: "second"})
	require.NoError(t, err)

	response, err := svc.Get(ctx, discussion.ID)
	require.NoError(t, err)
	require.Equal(t, 4, response.CommentCount)
	require.Len(t, response.Comments, 2)
	require.Equal(t, "first", response.Comments[0].Body)
	require.Equal(t, "second", response.Comments[1].Body)
	require.Len(t, response.Comments[0].Replies, 1)
	require.Equal(t, "reply", response.Comments[0].Replies[0].Body)
	require.Len(t, response.Comments[0].Replies[0].Replies, 1)
	require.Equal(t, "nested", response.Comments[0].Replies[0].Replies[0].Body)
}

func TestAddCommentRejectsForeignParent(t *testing.T) {
	svc := newDiscussionService(t)
	ctx := context.Background()
	one, err := svc.Create(ctx, student(10), dto.DiscussionCreateRequest{Title: "Thread one", Body: "body"})
	require.NoError(t, err)
	two, err := svc.Create(ctx, student(10), dto.DiscussionCreateRequest{Title: "Thread two", Body: "body"})
	require.NoError(t, err)

	foreign, err := svc.AddComment(ctx, student(11), one.ID, dto.CommentCreateRequest{Body: "hello"})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, student(11), two.ID, dto.CommentCreateRequest{Body: "reply", ParentID: uintPtr(foreign.ID)})
	require.ErrorIs(t, err, ErrInvalidParent)
	_, err = svc.AddComment(ctx, student(11), two.ID, dto.CommentCreateRequest{Body: "reply", ParentID: uintPtr(9999)})
	require.ErrorIs(t, err, ErrInvalidParent)
	_, err = svc.AddComment(ctx, student(11), 9999, dto.CommentCreateRequest{Body: "reply"})
	require.ErrorIs(t, err, ErrDiscussionNotFound)
}

func TestDeleteCommentRemovesReplies(t *testing.T) {
	svc := newDiscussionService(t)
	ctx := context.Background()
	discussion, err := svc.Create(ctx, student(10), dto.DiscussionCreateRequest{Title: "Chemistry", Body: "body"})
	require.NoError(t, err)

	root, err := svc.AddComment(ctx, student(11), discussion.ID, dto.CommentCreateRequest{Body: "root"})
	require.NoError(t, err)
	child, err := svc.AddComment(ctx, student(12), discussion.ID, dto.CommentCreateRequest{Body: "child", ParentID: uintPtr(root.ID)})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, student(13), discussion.ID, dto.CommentCreateRequest{Body: "grandchild", ParentID: uintPtr(child.ID)})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, student(13), discussion.ID, dto.CommentCreateRequest{Body: "sibling"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteComment(ctx, student(13), child.ID), ErrForbidden)
	require.NoError(t, svc.DeleteComment(ctx, student(12), child.ID))

	response, err := svc.Get(ctx, discussion.ID)
	require.NoError(t, err)
	require.Equal(t, 2, response.CommentCount)
	require.Len(t, response.Comments, 2)
	require.Empty(t, response.Comments[0].Replies)

	require.NoError(t, svc.DeleteComment(ctx, teacher(1), root.ID))
	require.ErrorIs(t, svc.DeleteComment(ctx, teacher(1), root.ID), ErrCommentNotFound)
}

func TestDeleteDiscussionRequiresAuthorOrTeacher(t *testing.T) {
	svc := newDiscussionService(t)
	ctx := context.Background()
	discussion, err := svc.Create(ctx, student(10), dto.DiscussionCreateRequest{Title: "Physics", Body: "body"})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, student(11), discussion.ID, dto.CommentCreateRequest{Body: "comment"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, student(11), discussion.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, teacher(1), discussion.ID))

	_, err = svc.Get(ctx, discussion.ID)
	require.ErrorIs(t, err, ErrDiscussionNotFound)
}

func TestBuildCommentTreePromotesOrphans(t *testing.T) {
	comments := []models.Comment{
		{ID: 1, Body: "root"},
		{ID: 2, ParentID: uintPtr(1), Body: "child"},
		{ID: 3, ParentID: uintPtr(42), Body: "orphan"},
		{ID: 4, ParentID: uintPtr(4), Body: "self"},
	}

	tree := BuildCommentTree(comments)
	require.Len(t, tree, 3)
	require.Equal(t, uint(1), tree[0].ID)
	require.Equal(t, uint(2), tree[0].Replies[0].ID)
	require.Equal(t, uint(3), tree[1].ID)
	require.Equal(t, uint(4), tree[2].ID)
	require.Empty(t, BuildCommentTree(nil))
}

func TestDescendantIDs(t *testing.T) {
	comments := []models.Comment{
		{ID: 1},
		{ID: 2, ParentID: uintPtr(1)},
		{ID: 3, ParentID: uintPtr(2)},
		{ID: 4, ParentID: uintPtr(1)},
		{ID: 5},
	}

	require.ElementsMatch(t, []uint{1, 2, 3, 4}, descendantIDs(comments, 1))
	require.Equal(t, []uint{5}, descendantIDs(comments, 5))
}
