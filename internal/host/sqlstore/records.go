package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kongondo/SitesManager-sub001/internal/host"
)

type fieldRepo struct{ db *sql.DB }

func (r fieldRepo) Get(ctx context.Context, name string) (host.Field, error) {
	var f host.Field
	var options string
	err := r.db.QueryRowContext(ctx, `SELECT id, name, type, label, options_json FROM fields WHERE name = ?`, name).
		Scan(&f.ID, &f.Name, &f.Type, &f.Label, &options)
	if err != nil {
		return host.Field{}, notFound(err, "field %s", name)
	}
	if err := json.Unmarshal([]byte(options), &f.Options); err != nil {
		return host.Field{}, fmt.Errorf("field %s options: %w", name, err)
	}
	return f, nil
}

func (r fieldRepo) Save(ctx context.Context, field host.Field) (host.Field, error) {
	options, err := encodeJSON(field.Options)
	if err != nil {
		return host.Field{}, fmt.Errorf("field %s options: %w", field.Name, err)
	}
	if field.ID == 0 {
		res, err := r.db.ExecContext(ctx, `INSERT INTO fields (name, type, label, options_json) VALUES (?, ?, ?, ?)`,
			field.Name, field.Type, field.Label, options)
		if isUniqueViolation(err) {
			return host.Field{}, fmt.Errorf("field %s: %w", field.Name, host.ErrDuplicateName)
		}
		if err != nil {
			return host.Field{}, fmt.Errorf("insert field %s: %w", field.Name, err)
		}
		field.ID, err = res.LastInsertId()
		return field, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE fields SET name = ?, type = ?, label = ?, options_json = ? WHERE id = ?`,
		field.Name, field.Type, field.Label, options, field.ID)
	if err != nil {
		return host.Field{}, fmt.Errorf("update field %s: %w", field.Name, err)
	}
	return field, checkAffected(res, "field %d", field.ID)
}

func (r fieldRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fields WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete field %d: %w", id, err)
	}
	return checkAffected(res, "field %d", id)
}

type fieldgroupRepo struct{ db *sql.DB }

func (r fieldgroupRepo) scan(row *sql.Row, key any) (host.Fieldgroup, error) {
	var g host.Fieldgroup
	var ids string
	if err := row.Scan(&g.ID, &g.Name, &ids); err != nil {
		return host.Fieldgroup{}, notFound(err, "fieldgroup %v", key)
	}
	if err := json.Unmarshal([]byte(ids), &g.FieldIDs); err != nil {
		return host.Fieldgroup{}, fmt.Errorf("fieldgroup %v fields: %w", key, err)
	}
	return g, nil
}

func (r fieldgroupRepo) Get(ctx context.Context, name string) (host.Fieldgroup, error) {
	return r.scan(r.db.QueryRowContext(ctx, `SELECT id, name, field_ids_json FROM fieldgroups WHERE name = ?`, name), name)
}

func (r fieldgroupRepo) GetByID(ctx context.Context, id int64) (host.Fieldgroup, error) {
	return r.scan(r.db.QueryRowContext(ctx, `SELECT id, name, field_ids_json FROM fieldgroups WHERE id = ?`, id), id)
}

func (r fieldgroupRepo) Save(ctx context.Context, group host.Fieldgroup) (host.Fieldgroup, error) {
	ids, err := encodeJSON(nonNilIDs(group.FieldIDs))
	if err != nil {
		return host.Fieldgroup{}, err
	}
	if group.ID == 0 {
		res, err := r.db.ExecContext(ctx, `INSERT INTO fieldgroups (name, field_ids_json) VALUES (?, ?)`, group.Name, ids)
		if isUniqueViolation(err) {
			return host.Fieldgroup{}, fmt.Errorf("fieldgroup %s: %w", group.Name, host.ErrDuplicateName)
		}
		if err != nil {
			return host.Fieldgroup{}, fmt.Errorf("insert fieldgroup %s: %w", group.Name, err)
		}
		group.ID, err = res.LastInsertId()
		return group, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE fieldgroups SET name = ?, field_ids_json = ? WHERE id = ?`, group.Name, ids, group.ID)
	if err != nil {
		return host.Fieldgroup{}, fmt.Errorf("update fieldgroup %s: %w", group.Name, err)
	}
	return group, checkAffected(res, "fieldgroup %d", group.ID)
}

func (r fieldgroupRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fieldgroups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete fieldgroup %d: %w", id, err)
	}
	return checkAffected(res, "fieldgroup %d", id)
}

type templateRepo struct{ db *sql.DB }

func (r templateRepo) Get(ctx context.Context, name string) (host.Template, error) {
	var t host.Template
	var useRoles, noChildren int
	var children, parents string
	err := r.db.QueryRowContext(ctx, `SELECT id, name, label, tags, fieldgroup_id, use_roles, no_children, no_parents,
		child_templates_json, parent_templates_json FROM templates WHERE name = ?`, name).
		Scan(&t.ID, &t.Name, &t.Label, &t.Tags, &t.FieldgroupID, &useRoles, &noChildren, &t.NoParents, &children, &parents)
	if err != nil {
		return host.Template{}, notFound(err, "template %s", name)
	}
	t.UseRoles = useRoles == 1
	t.NoChildren = noChildren == 1
	if err := json.Unmarshal([]byte(children), &t.ChildTemplates); err != nil {
		return host.Template{}, fmt.Errorf("template %s children: %w", name, err)
	}
	if err := json.Unmarshal([]byte(parents), &t.ParentTemplates); err != nil {
		return host.Template{}, fmt.Errorf("template %s parents: %w", name, err)
	}
	return t, nil
}

func (r templateRepo) Save(ctx context.Context, tpl host.Template) (host.Template, error) {
	children, err := encodeJSON(nonNilIDs(tpl.ChildTemplates))
	if err != nil {
		return host.Template{}, err
	}
	parents, err := encodeJSON(nonNilIDs(tpl.ParentTemplates))
	if err != nil {
		return host.Template{}, err
	}
	if tpl.ID == 0 {
		res, err := r.db.ExecContext(ctx, `INSERT INTO templates (name, label, tags, fieldgroup_id, use_roles, no_children,
			no_parents, child_templates_json, parent_templates_json) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tpl.Name, tpl.Label, tpl.Tags, tpl.FieldgroupID, boolInt(tpl.UseRoles), boolInt(tpl.NoChildren),
			tpl.NoParents, children, parents)
		if isUniqueViolation(err) {
			return host.Template{}, fmt.Errorf("template %s: %w", tpl.Name, host.ErrDuplicateName)
		}
		if err != nil {
			return host.Template{}, fmt.Errorf("insert template %s: %w", tpl.Name, err)
		}
		tpl.ID, err = res.LastInsertId()
		return tpl, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE templates SET name = ?, label = ?, tags = ?, fieldgroup_id = ?, use_roles = ?,
		no_children = ?, no_parents = ?, child_templates_json = ?, parent_templates_json = ? WHERE id = ?`,
		tpl.Name, tpl.Label, tpl.Tags, tpl.FieldgroupID, boolInt(tpl.UseRoles), boolInt(tpl.NoChildren),
		tpl.NoParents, children, parents, tpl.ID)
	if err != nil {
		return host.Template{}, fmt.Errorf("update template %s: %w", tpl.Name, err)
	}
	return tpl, checkAffected(res, "template %d", tpl.ID)
}

func (r templateRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template %d: %w", id, err)
	}
	return checkAffected(res, "template %d", id)
}

type moduleRepo struct{ db *sql.DB }

func (r moduleRepo) GetConfig(ctx context.Context, class string) (map[string]any, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data_json FROM modules WHERE class = ?`, class).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read module %s: %w", class, err)
	}
	out := map[string]any{}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("decode module %s: %w", class, err)
	}
	return out, nil
}

func (r moduleRepo) SaveConfig(ctx context.Context, class string, values map[string]any) error {
	if values == nil {
		values = map[string]any{}
	}
	data, err := encodeJSON(values)
	if err != nil {
		return fmt.Errorf("encode module %s: %w", class, err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO modules (class, data_json) VALUES (?, ?)
		ON CONFLICT(class) DO UPDATE SET data_json = excluded.data_json`, class, data)
	if err != nil {
		return fmt.Errorf("save module %s: %w", class, err)
	}
	return nil
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
