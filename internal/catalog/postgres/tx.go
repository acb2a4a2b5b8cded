package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/comicdex/catalog-migrator/internal/comic"
)

// storeTx implements catalog.Tx over a pgx transaction. The whole issue
// subtree is written through it: publisher and series upsert-by-name first,
// then the issue row, stories, individuals, appearances, arcs, and covers.
type storeTx struct {
	tx pgx.Tx
}

func (t *storeTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (t *storeTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback tx: %w", err)
	}
	return nil
}

const (
	upsertPublisherSQL = `
INSERT INTO publishers (name, original)
VALUES ($1, $2)
ON CONFLICT (name, original) DO UPDATE SET name = EXCLUDED.name
RETURNING id`

	upsertSeriesSQL = `
INSERT INTO series (title, volume, publisher_id)
VALUES ($1, $2, $3)
ON CONFLICT (title, volume, publisher_id) DO UPDATE SET title = EXCLUDED.title
RETURNING id`

	upsertIssueSQL = `
INSERT INTO issues (series_id, number, format, variant, release_month, release_year, price, currency, edited)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (series_id, number, format, variant) DO UPDATE SET
  release_month = EXCLUDED.release_month,
  release_year  = EXCLUDED.release_year,
  price         = EXCLUDED.price,
  currency      = EXCLUDED.currency,
  edited        = EXCLUDED.edited
RETURNING id`

	upsertIndividualSQL = `
INSERT INTO individuals (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`

	insertIssueRoleSQL = `
INSERT INTO issue_individuals (issue_id, individual_id, role)
VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING`

	insertStorySQL = `
INSERT INTO stories (issue_id, number, title, original_id)
VALUES ($1, $2, $3, $4)
RETURNING id`

	insertStoryRoleSQL = `
INSERT INTO story_individuals (story_id, individual_id, role)
VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING`

	insertAppearanceSQL = `
INSERT INTO appearances (story_id, name, category, role, first_appearance)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT DO NOTHING`

	upsertArcSQL = `
INSERT INTO arcs (title, type)
VALUES ($1, $2)
ON CONFLICT (title, type) DO UPDATE SET title = EXCLUDED.title
RETURNING id`

	insertIssueArcSQL = `
INSERT INTO issue_arcs (issue_id, arc_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

	insertCoverSQL = `
INSERT INTO covers (issue_id, number, label, image_url)
VALUES ($1, $2, $3, $4)
RETURNING id`

	insertCoverRoleSQL = `
INSERT INTO cover_individuals (cover_id, individual_id, role)
VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING`
)

// UpsertIssue persists the draft subtree and returns the issue row id.
// Resolved original drafts are not written here; they were reconciled as
// their own issues and only the story link id survives.
func (t *storeTx) UpsertIssue(ctx context.Context, draft *comic.IssueDraft) (int64, error) {
	var publisherID int64
	err := t.tx.QueryRow(ctx, upsertPublisherSQL,
		draft.Series.Publisher.Name, draft.Series.Publisher.Original,
	).Scan(&publisherID)
	if err != nil {
		return 0, fmt.Errorf("upsert publisher: %w", err)
	}

	var seriesID int64
	err = t.tx.QueryRow(ctx, upsertSeriesSQL,
		draft.Series.Title, draft.Series.Volume, publisherID,
	).Scan(&seriesID)
	if err != nil {
		return 0, fmt.Errorf("upsert series: %w", err)
	}

	var issueID int64
	err = t.tx.QueryRow(ctx, upsertIssueSQL,
		seriesID, draft.Number, draft.Format, draft.Variant,
		draft.Released.Month, draft.Released.Year,
		draft.Price, draft.Currency, draft.Edited,
	).Scan(&issueID)
	if err != nil {
		return 0, fmt.Errorf("upsert issue: %w", err)
	}

	for _, editor := range draft.Editors {
		if err := t.attachIssueRoles(ctx, issueID, editor); err != nil {
			return 0, err
		}
	}

	for _, story := range draft.Stories {
		if err := t.insertStory(ctx, issueID, story); err != nil {
			return 0, err
		}
	}

	for _, arc := range draft.Arcs {
		var arcID int64
		if err := t.tx.QueryRow(ctx, upsertArcSQL, arc.Title, string(arc.Type)).Scan(&arcID); err != nil {
			return 0, fmt.Errorf("upsert arc %q: %w", arc.Title, err)
		}
		if _, err := t.tx.Exec(ctx, insertIssueArcSQL, issueID, arcID); err != nil {
			return 0, fmt.Errorf("link arc %q: %w", arc.Title, err)
		}
	}

	for _, cover := range draft.Covers {
		if err := t.insertCover(ctx, issueID, cover); err != nil {
			return 0, err
		}
	}

	return issueID, nil
}

func (t *storeTx) upsertIndividual(ctx context.Context, name string) (int64, error) {
	var id int64
	if err := t.tx.QueryRow(ctx, upsertIndividualSQL, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert individual %q: %w", name, err)
	}
	return id, nil
}

func (t *storeTx) attachIssueRoles(ctx context.Context, issueID int64, ind *comic.IndividualRef) error {
	id, err := t.upsertIndividual(ctx, ind.Name)
	if err != nil {
		return err
	}
	for _, role := range ind.Roles {
		if _, err := t.tx.Exec(ctx, insertIssueRoleSQL, issueID, id, string(role)); err != nil {
			return fmt.Errorf("attach issue role: %w", err)
		}
	}
	return nil
}

func (t *storeTx) insertStory(ctx context.Context, issueID int64, story *comic.StoryDraft) error {
	var originalID *int64
	if story.OriginalStoryID != 0 {
		originalID = &story.OriginalStoryID
	}

	var storyID int64
	err := t.tx.QueryRow(ctx, insertStorySQL,
		issueID, story.Number, story.Title, originalID,
	).Scan(&storyID)
	if err != nil {
		return fmt.Errorf("insert story %d: %w", story.Number, err)
	}

	for _, ind := range story.Individuals {
		id, err := t.upsertIndividual(ctx, ind.Name)
		if err != nil {
			return err
		}
		for _, role := range ind.Roles {
			if _, err := t.tx.Exec(ctx, insertStoryRoleSQL, storyID, id, string(role)); err != nil {
				return fmt.Errorf("attach story role: %w", err)
			}
		}
	}

	for _, app := range story.Appearances {
		_, err := t.tx.Exec(ctx, insertAppearanceSQL,
			storyID, app.Name, string(app.Category), string(app.Role), app.First)
		if err != nil {
			return fmt.Errorf("insert appearance %q: %w", app.Name, err)
		}
	}
	return nil
}

func (t *storeTx) insertCover(ctx context.Context, issueID int64, cover *comic.VariantDraft) error {
	var coverID int64
	err := t.tx.QueryRow(ctx, insertCoverSQL,
		issueID, cover.Number, cover.Label, cover.ImageURL,
	).Scan(&coverID)
	if err != nil {
		return fmt.Errorf("insert cover %d: %w", cover.Number, err)
	}
	for _, ind := range cover.Artists {
		id, err := t.upsertIndividual(ctx, ind.Name)
		if err != nil {
			return err
		}
		for _, role := range ind.Roles {
			if _, err := t.tx.Exec(ctx, insertCoverRoleSQL, coverID, id, string(role)); err != nil {
				return fmt.Errorf("attach cover role: %w", err)
			}
		}
	}
	return nil
}
