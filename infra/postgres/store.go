package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CrestNiraj12/clipflow/app"
	"github.com/CrestNiraj12/clipflow/domain"
)

const (
	defaultFeedLimit    = 40
	defaultCommentLimit = 120
)

// Store implements the feed, interaction, moderation and comment services.
type Store struct {
	pool *pgxpool.Pool
	log  *log.Helper
}

var (
	_ app.FeedService        = (*Store)(nil)
	_ app.InteractionService = (*Store)(nil)
	_ app.ModerationService  = (*Store)(nil)
	_ app.CommentService     = (*Store)(nil)
)

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool, logger log.Logger) *Store {
	return &Store{
		pool: pool,
		log:  log.NewHelper(log.With(logger, "module", "postgres")),
	}
}

// Viewer flags are computed against NULLIF($1, '')::uuid so anonymous viewers pass "".
const itemColumns = `
	v.id::text,
	v.video_id,
	v.embed_url,
	v.caption,
	v.user_id::text,
	COALESCE(NULLIF(v.author_display_name, ''), v.author_username),
	v.like_count,
	v.comment_count,
	v.created_at,
	EXISTS(SELECT 1 FROM likes l WHERE l.post_id = v.id AND l.user_id = NULLIF($1, '')::uuid),
	EXISTS(SELECT 1 FROM follows f WHERE f.following_id = v.user_id AND f.follower_id = NULLIF($1, '')::uuid)
`

const viewerFilter = `
	NOT EXISTS(SELECT 1 FROM blocks b WHERE b.blocker_id = NULLIF($1, '')::uuid AND b.blocked_id = v.user_id)
	AND NOT EXISTS(SELECT 1 FROM not_interested n WHERE n.user_id = NULLIF($1, '')::uuid AND n.post_id = v.id)
`

func scanItem(row pgx.Row) (domain.FeedItem, error) {
	var it domain.FeedItem
	err := row.Scan(
		&it.ID, &it.VideoRef, &it.EmbedURL, &it.Caption, &it.AuthorID, &it.AuthorName,
		&it.LikeCount, &it.CommentCount, &it.CreatedAt, &it.LikedByViewer, &it.FollowedByViewer,
	)
	return it, err
}

// ListFeedItems returns the newest items for the query's mode.
func (s *Store) ListFeedItems(ctx context.Context, q domain.FeedQuery) ([]domain.FeedItem, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	args := []any{q.ViewerID, limit}
	var modeFilter string
	switch q.Mode {
	case domain.ModeFollowing:
		if q.ViewerID == "" {
			return []domain.FeedItem{}, nil
		}
		modeFilter = `AND v.user_id IN (SELECT following_id FROM follows WHERE follower_id = NULLIF($1, '')::uuid)`
	case domain.ModeTag:
		tag := domain.NormalizeTag(q.Tag)
		if tag == "" {
			return []domain.FeedItem{}, nil
		}
		modeFilter = `AND EXISTS(
			SELECT 1 FROM post_hashtags ph JOIN hashtags h ON h.id = ph.hashtag_id
			WHERE ph.post_id = v.id AND h.tag = $3)`
		args = append(args, tag)
	}

	query := `SELECT ` + itemColumns + `
		FROM v_posts_public v
		WHERE ` + viewerFilter + modeFilter + `
		ORDER BY v.created_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		s.log.WithContext(ctx).Errorw("msg", "list feed failed", "mode", q.Mode, "error", err)
		return nil, fmt.Errorf("list feed: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.FeedItem, error) { return scanItem(r) })
	if err != nil {
		return nil, fmt.Errorf("scan feed: %w", err)
	}
	return items, nil
}

// GetItem returns one item, or domain.ErrNotFound when it is missing or hidden for the viewer.
func (s *Store) GetItem(ctx context.Context, id, viewerID string) (domain.FeedItem, error) {
	query := `SELECT ` + itemColumns + `
		FROM v_posts_public v
		WHERE v.id = $2 AND ` + viewerFilter
	it, err := scanItem(s.pool.QueryRow(ctx, query, viewerID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FeedItem{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.FeedItem{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// CreatePost inserts a post and links its hashtags in one transaction.
func (s *Store) CreatePost(ctx context.Context, p app.NewPost) (domain.FeedItem, error) {
	if p.AuthorID == "" {
		return domain.FeedItem{}, domain.ErrUnauthorized
	}
	original := strings.TrimSpace(p.OriginalURL)
	if original == "" {
		original = "https://youtu.be/" + p.VideoID
	}
	var id string
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO posts (user_id, original_url, video_id, embed_url, caption)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''))
			RETURNING id::text
		`, p.AuthorID, original, p.VideoID, p.EmbedURL, strings.TrimSpace(p.Caption)).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}

		for _, tag := range p.Hashtags {
			tag = domain.NormalizeTag(tag)
			if tag == "" {
				continue
			}
			var tagID int64
			if err := tx.QueryRow(ctx, `
				INSERT INTO hashtags (tag) VALUES ($1)
				ON CONFLICT (tag) DO UPDATE SET tag = EXCLUDED.tag
				RETURNING id
			`, tag).Scan(&tagID); err != nil {
				return fmt.Errorf("upsert hashtag %s: %w", tag, err)
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO post_hashtags (post_id, hashtag_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, id, tagID); err != nil {
				return fmt.Errorf("link hashtag %s: %w", tag, err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.WithContext(ctx).Errorw("msg", "create post failed", "video", p.VideoID, "error", err)
		return domain.FeedItem{}, err
	}
	return s.GetItem(ctx, id, p.AuthorID)
}

// ToggleLike deletes the viewer's like if present, otherwise inserts it, and returns the
// resulting flag and count.
func (s *Store) ToggleLike(ctx context.Context, viewerID, itemID string) (domain.LikeState, error) {
	if viewerID == "" {
		return domain.LikeState{}, domain.ErrUnauthorized
	}
	var state domain.LikeState
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, viewerID, itemID)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		if tag.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx, `INSERT INTO likes (user_id, post_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, viewerID, itemID); err != nil {
				return fmt.Errorf("insert like: %w", err)
			}
			state.Liked = true
		}
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, itemID).Scan(&state.Count); err != nil {
			return fmt.Errorf("count likes: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.WithContext(ctx).Errorw("msg", "toggle like failed", "item", itemID, "error", err)
		return domain.LikeState{}, err
	}
	return state, nil
}

// ToggleFollow flips the viewer's follow on authorID and returns whether they now follow.
func (s *Store) ToggleFollow(ctx context.Context, viewerID, authorID string) (bool, error) {
	if viewerID == "" {
		return false, domain.ErrUnauthorized
	}
	if viewerID == authorID {
		return false, &domain.Error{Kind: domain.KindValidation, Op: "toggle follow", Err: errors.New("you cannot follow yourself")}
	}
	var following bool
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`, viewerID, authorID)
		if err != nil {
			return fmt.Errorf("delete follow: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, `INSERT INTO follows (follower_id, following_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, viewerID, authorID); err != nil {
			return fmt.Errorf("insert follow: %w", err)
		}
		following = true
		return nil
	})
	if err != nil {
		s.log.WithContext(ctx).Errorw("msg", "toggle follow failed", "author", authorID, "error", err)
		return false, err
	}
	return following, nil
}

// Profile returns an author card with follower and following counts.
func (s *Store) Profile(ctx context.Context, authorID string) (domain.Profile, error) {
	var p domain.Profile
	err := s.pool.QueryRow(ctx, `
		SELECT
			pr.id::text,
			pr.username,
			COALESCE(pr.display_name, ''),
			COALESCE(pr.bio, ''),
			(SELECT COUNT(*) FROM follows f WHERE f.following_id = pr.id),
			(SELECT COUNT(*) FROM follows f WHERE f.follower_id = pr.id)
		FROM profiles pr
		WHERE pr.id = $1
	`, authorID).Scan(&p.ID, &p.Username, &p.DisplayName, &p.Bio, &p.Followers, &p.Following)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// BlockUser records a block; blocking twice is not an error.
func (s *Store) BlockUser(ctx context.Context, viewerID, authorID string) error {
	if viewerID == "" {
		return domain.ErrUnauthorized
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO blocks (blocker_id, blocked_id) VALUES ($1, $2)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`, viewerID, authorID); err != nil {
		return fmt.Errorf("block user: %w", err)
	}
	return nil
}

// NotInterested hides one item from the viewer's feeds.
func (s *Store) NotInterested(ctx context.Context, viewerID, itemID string) error {
	if viewerID == "" {
		return domain.ErrUnauthorized
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO not_interested (user_id, post_id) VALUES ($1, $2)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`, viewerID, itemID); err != nil {
		return fmt.Errorf("mark not interested: %w", err)
	}
	return nil
}

// ListComments returns an item's comments oldest first, without comments by authors the
// viewer blocked.
func (s *Store) ListComments(ctx context.Context, itemID, viewerID string, limit int) ([]domain.CommentRecord, error) {
	if limit <= 0 {
		limit = defaultCommentLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT c.id::text, c.post_id::text, c.user_id::text, COALESCE(NULLIF(c.display_name, ''), c.username), c.content, c.created_at
		FROM v_comments_public c
		WHERE c.post_id = $1
			AND NOT EXISTS(SELECT 1 FROM blocks b WHERE b.blocker_id = NULLIF($2, '')::uuid AND b.blocked_id = c.user_id)
		ORDER BY c.created_at ASC
		LIMIT $3
	`, itemID, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	list, err := pgx.CollectRows(rows, scanComment)
	if err != nil {
		return nil, fmt.Errorf("scan comments: %w", err)
	}
	return list, nil
}

// GetComment returns one comment, or domain.ErrNotFound.
func (s *Store) GetComment(ctx context.Context, id string) (domain.CommentRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id::text, c.post_id::text, c.user_id::text, COALESCE(NULLIF(c.display_name, ''), c.username), c.content, c.created_at
		FROM v_comments_public c
		WHERE c.id = $1
	`, id)
	if err != nil {
		return domain.CommentRecord{}, fmt.Errorf("get comment: %w", err)
	}
	rec, err := pgx.CollectExactlyOneRow(rows, scanComment)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CommentRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.CommentRecord{}, fmt.Errorf("get comment: %w", err)
	}
	return rec, nil
}

// CreateComment stores a trimmed comment. The client id is kept when provided.
func (s *Store) CreateComment(ctx context.Context, c domain.NewComment) (domain.CommentRecord, error) {
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return domain.CommentRecord{}, domain.ErrEmptyComment
	}
	if c.AuthorID == "" {
		return domain.CommentRecord{}, domain.ErrUnauthorized
	}
	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO comments (id, post_id, user_id, content)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4)
		RETURNING id::text
	`, c.ID, c.ItemID, c.AuthorID, text).Scan(&id)
	if err != nil {
		s.log.WithContext(ctx).Errorw("msg", "create comment failed", "item", c.ItemID, "error", err)
		return domain.CommentRecord{}, fmt.Errorf("create comment: %w", err)
	}
	return s.GetComment(ctx, id)
}

func scanComment(row pgx.CollectableRow) (domain.CommentRecord, error) {
	var (
		c       domain.CommentRecord
		created time.Time
	)
	err := row.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Text, &created)
	c.CreatedAt = created
	return c, err
}
