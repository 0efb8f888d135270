package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kongondo/SitesManager-sub001/internal/host"
)

type pageRepo struct{ db *sql.DB }

const pageColumns = `id, parent_id, name, title, template_id, status, meta_json`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (host.Page, error) {
	var p host.Page
	var meta string
	if err := row.Scan(&p.ID, &p.ParentID, &p.Name, &p.Title, &p.TemplateID, &p.Status, &meta); err != nil {
		return host.Page{}, err
	}
	if err := json.Unmarshal([]byte(meta), &p.Meta); err != nil {
		return host.Page{}, fmt.Errorf("page %d meta: %w", p.ID, err)
	}
	if len(p.Meta) == 0 {
		p.Meta = nil
	}
	return p, nil
}

func (r pageRepo) Get(ctx context.Context, id int64) (host.Page, error) {
	p, err := scanPage(r.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
	if err != nil {
		return host.Page{}, notFound(err, "page %d", id)
	}
	return p, nil
}

func (r pageRepo) FindOne(ctx context.Context, q host.PageQuery) (host.Page, error) {
	q.Limit = 1
	found, err := r.Find(ctx, q)
	if err != nil {
		return host.Page{}, err
	}
	if len(found) == 0 {
		return host.Page{}, fmt.Errorf("page %s: %w", q.Name, host.ErrNotFound)
	}
	return found[0], nil
}

// buildPageQuery translates q into a WHERE clause with positional arguments.
func buildPageQuery(q host.PageQuery) (string, []any) {
	var where []string
	var args []any
	if q.ParentID != 0 {
		where = append(where, "parent_id = ?")
		args = append(args, q.ParentID)
	}
	if q.Name != "" {
		where = append(where, "name = ?")
		args = append(args, q.Name)
	}
	if q.TemplateID != 0 {
		where = append(where, "template_id = ?")
		args = append(args, q.TemplateID)
	}
	if len(q.TemplateIDs) > 0 {
		marks := make([]string, len(q.TemplateIDs))
		for i, id := range q.TemplateIDs {
			marks[i] = "?"
			args = append(args, id)
		}
		where = append(where, "template_id IN ("+strings.Join(marks, ", ")+")")
	}
	if q.MinStatus > 0 {
		where = append(where, "status >= ?")
		args = append(args, q.MinStatus)
	}
	if !q.IncludeTrashed && q.MinStatus < host.StatusTrash {
		where = append(where, "(status & ?) = 0")
		args = append(args, host.StatusTrash)
	}

	query := `SELECT ` + pageColumns + ` FROM pages`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}
	return query, args
}

func (r pageRepo) Find(ctx context.Context, q host.PageQuery) ([]host.Page, error) {
	query, args := buildPageQuery(q)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find pages: %w", err)
	}
	defer rows.Close()

	var out []host.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r pageRepo) Save(ctx context.Context, page host.Page) (host.Page, error) {
	meta := page.Meta
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := encodeJSON(meta)
	if err != nil {
		return host.Page{}, err
	}
	if page.ID == 0 {
		res, err := r.db.ExecContext(ctx, `INSERT INTO pages (parent_id, name, title, template_id, status, meta_json)
			VALUES (?, ?, ?, ?, ?, ?)`, page.ParentID, page.Name, page.Title, page.TemplateID, page.Status, metaJSON)
		if isUniqueViolation(err) {
			return host.Page{}, fmt.Errorf("page %s: %w", page.Name, host.ErrDuplicateName)
		}
		if err != nil {
			return host.Page{}, fmt.Errorf("insert page %s: %w", page.Name, err)
		}
		page.ID, err = res.LastInsertId()
		return page, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE pages SET parent_id = ?, name = ?, title = ?, template_id = ?, status = ?,
		meta_json = ? WHERE id = ?`, page.ParentID, page.Name, page.Title, page.TemplateID, page.Status, metaJSON, page.ID)
	if err != nil {
		return host.Page{}, fmt.Errorf("update page %s: %w", page.Name, err)
	}
	return page, checkAffected(res, "page %d", page.ID)
}

func (r pageRepo) Delete(ctx context.Context, id int64, recursive bool) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	var children int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE parent_id = ?`, id).Scan(&children); err != nil {
		return fmt.Errorf("count children of page %d: %w", id, err)
	}
	if children > 0 && !recursive {
		return fmt.Errorf("page %d has %d children", id, children)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete page %d: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `WITH RECURSIVE tree(id) AS (
			SELECT id FROM pages WHERE id = ?
			UNION ALL
			SELECT p.id FROM pages p JOIN tree t ON p.parent_id = t.id
		)
		DELETE FROM pages WHERE id IN (SELECT id FROM tree)`, id)
	if err != nil {
		return fmt.Errorf("delete page %d: %w", id, err)
	}
	return tx.Commit()
}
