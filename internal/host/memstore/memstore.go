// Package memstore is an in-memory implementation of the host repositories. It
// backs unit tests and dry runs; all records are lost when the Store is dropped.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kongondo/SitesManager-sub001/internal/host"
)

// Store holds every host record in maps keyed by id.
type Store struct {
	mu          sync.Mutex
	nextID      int64
	fields      map[int64]host.Field
	fieldgroups map[int64]host.Fieldgroup
	templates   map[int64]host.Template
	pages       map[int64]host.Page
	modules     map[string]map[string]any
}

// New returns an empty store.
func New() *Store {
	return &Store{
		fields:      map[int64]host.Field{},
		fieldgroups: map[int64]host.Fieldgroup{},
		templates:   map[int64]host.Template{},
		pages:       map[int64]host.Page{},
		modules:     map[string]map[string]any{},
	}
}

// Repositories exposes the store through the host repository interfaces.
func (s *Store) Repositories() host.Repositories {
	return host.Repositories{
		Fields:      fieldRepo{s},
		Fieldgroups: fieldgroupRepo{s},
		Templates:   templateRepo{s},
		Pages:       pageRepo{s},
		Modules:     moduleRepo{s},
	}
}

// Counts reports how many records of each kind the store holds.
type Counts struct {
	Fields      int
	Fieldgroups int
	Templates   int
	Pages       int
}

// Counts returns the current record counts.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Fields:      len(s.fields),
		Fieldgroups: len(s.fieldgroups),
		Templates:   len(s.templates),
		Pages:       len(s.pages),
	}
}

func (s *Store) allocID() int64 {
	s.nextID++
	return s.nextID
}

type fieldRepo struct{ s *Store }

func (r fieldRepo) Get(_ context.Context, name string) (host.Field, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.fields {
		if f.Name == name {
			return f, nil
		}
	}
	return host.Field{}, fmt.Errorf("field %s: %w", name, host.ErrNotFound)
}

func (r fieldRepo) Save(_ context.Context, field host.Field) (host.Field, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, f := range r.s.fields {
		if f.Name == field.Name && id != field.ID {
			return host.Field{}, fmt.Errorf("field %s: %w", field.Name, host.ErrDuplicateName)
		}
	}
	if field.ID == 0 {
		field.ID = r.s.allocID()
	}
	r.s.fields[field.ID] = field
	return field, nil
}

func (r fieldRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.fields[id]; !ok {
		return fmt.Errorf("field %d: %w", id, host.ErrNotFound)
	}
	delete(r.s.fields, id)
	return nil
}

type fieldgroupRepo struct{ s *Store }

func (r fieldgroupRepo) Get(_ context.Context, name string) (host.Fieldgroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.fieldgroups {
		if g.Name == name {
			return copyGroup(g), nil
		}
	}
	return host.Fieldgroup{}, fmt.Errorf("fieldgroup %s: %w", name, host.ErrNotFound)
}

func (r fieldgroupRepo) GetByID(_ context.Context, id int64) (host.Fieldgroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.fieldgroups[id]
	if !ok {
		return host.Fieldgroup{}, fmt.Errorf("fieldgroup %d: %w", id, host.ErrNotFound)
	}
	return copyGroup(g), nil
}

func (r fieldgroupRepo) Save(_ context.Context, group host.Fieldgroup) (host.Fieldgroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, g := range r.s.fieldgroups {
		if g.Name == group.Name && id != group.ID {
			return host.Fieldgroup{}, fmt.Errorf("fieldgroup %s: %w", group.Name, host.ErrDuplicateName)
		}
	}
	if group.ID == 0 {
		group.ID = r.s.allocID()
	}
	r.s.fieldgroups[group.ID] = copyGroup(group)
	return group, nil
}

func (r fieldgroupRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.fieldgroups[id]; !ok {
		return fmt.Errorf("fieldgroup %d: %w", id, host.ErrNotFound)
	}
	for _, t := range r.s.templates {
		if t.FieldgroupID == id {
			return fmt.Errorf("fieldgroup %d is used by template %s", id, t.Name)
		}
	}
	delete(r.s.fieldgroups, id)
	return nil
}

type templateRepo struct{ s *Store }

func (r templateRepo) Get(_ context.Context, name string) (host.Template, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.templates {
		if t.Name == name {
			return copyTemplate(t), nil
		}
	}
	return host.Template{}, fmt.Errorf("template %s: %w", name, host.ErrNotFound)
}

func (r templateRepo) Save(_ context.Context, tpl host.Template) (host.Template, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.templates {
		if t.Name == tpl.Name && id != tpl.ID {
			return host.Template{}, fmt.Errorf("template %s: %w", tpl.Name, host.ErrDuplicateName)
		}
	}
	if _, ok := r.s.fieldgroups[tpl.FieldgroupID]; !ok {
		return host.Template{}, fmt.Errorf("template %s: fieldgroup %d: %w", tpl.Name, tpl.FieldgroupID, host.ErrNotFound)
	}
	if tpl.ID == 0 {
		tpl.ID = r.s.allocID()
	}
	r.s.templates[tpl.ID] = copyTemplate(tpl)
	return tpl, nil
}

func (r templateRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.templates[id]; !ok {
		return fmt.Errorf("template %d: %w", id, host.ErrNotFound)
	}
	for _, p := range r.s.pages {
		if p.TemplateID == id {
			return fmt.Errorf("template %d is used by page %s", id, p.Name)
		}
	}
	delete(r.s.templates, id)
	return nil
}

type pageRepo struct{ s *Store }

func (r pageRepo) Get(_ context.Context, id int64) (host.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pages[id]
	if !ok {
		return host.Page{}, fmt.Errorf("page %d: %w", id, host.ErrNotFound)
	}
	return copyPage(p), nil
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

func (r pageRepo) Find(_ context.Context, q host.PageQuery) ([]host.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]int64, 0, len(r.s.pages))
	for id := range r.s.pages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []host.Page
	for _, id := range ids {
		p := r.s.pages[id]
		if !matches(p, q) {
			continue
		}
		out = append(out, copyPage(p))
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func matches(p host.Page, q host.PageQuery) bool {
	if q.ParentID != 0 && p.ParentID != q.ParentID {
		return false
	}
	if q.Name != "" && p.Name != q.Name {
		return false
	}
	if q.TemplateID != 0 && p.TemplateID != q.TemplateID {
		return false
	}
	if len(q.TemplateIDs) > 0 {
		hit := false
		for _, id := range q.TemplateIDs {
			if p.TemplateID == id {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if q.MinStatus > 0 && p.Status < q.MinStatus {
		return false
	}
	includeTrashed := q.IncludeTrashed || q.MinStatus >= host.StatusTrash
	if !includeTrashed && p.HasStatus(host.StatusTrash) {
		return false
	}
	return true
}

func (r pageRepo) Save(_ context.Context, page host.Page) (host.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.templates[page.TemplateID]; !ok {
		return host.Page{}, fmt.Errorf("page %s: template %d: %w", page.Name, page.TemplateID, host.ErrNotFound)
	}
	if page.ParentID != 0 {
		if _, ok := r.s.pages[page.ParentID]; !ok {
			return host.Page{}, fmt.Errorf("page %s: parent %d: %w", page.Name, page.ParentID, host.ErrNotFound)
		}
	}
	for id, p := range r.s.pages {
		if p.ParentID == page.ParentID && p.Name == page.Name && id != page.ID {
			return host.Page{}, fmt.Errorf("page %s: %w", page.Name, host.ErrDuplicateName)
		}
	}
	if page.ID == 0 {
		page.ID = r.s.allocID()
	}
	r.s.pages[page.ID] = copyPage(page)
	return page, nil
}

func (r pageRepo) Delete(_ context.Context, id int64, recursive bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pages[id]; !ok {
		return fmt.Errorf("page %d: %w", id, host.ErrNotFound)
	}
	children := r.s.childrenOf(id)
	if len(children) > 0 && !recursive {
		return fmt.Errorf("page %d has %d children", id, len(children))
	}
	r.s.deleteTree(id)
	return nil
}

func (s *Store) childrenOf(id int64) []int64 {
	var out []int64
	for childID, p := range s.pages {
		if p.ParentID == id {
			out = append(out, childID)
		}
	}
	return out
}

func (s *Store) deleteTree(id int64) {
	for _, child := range s.childrenOf(id) {
		s.deleteTree(child)
	}
	delete(s.pages, id)
}

type moduleRepo struct{ s *Store }

func (r moduleRepo) GetConfig(_ context.Context, class string) (map[string]any, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return host.CloneConfig(r.s.modules[class])
}

func (r moduleRepo) SaveConfig(_ context.Context, class string, data map[string]any) error {
	clone, err := host.CloneConfig(data)
	if err != nil {
		return fmt.Errorf("module %s: %w", class, err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.modules[class] = clone
	return nil
}

func copyGroup(g host.Fieldgroup) host.Fieldgroup {
	g.FieldIDs = append([]int64(nil), g.FieldIDs...)
	return g
}

func copyTemplate(t host.Template) host.Template {
	t.ChildTemplates = append([]int64(nil), t.ChildTemplates...)
	t.ParentTemplates = append([]int64(nil), t.ParentTemplates...)
	return t
}

func copyPage(p host.Page) host.Page {
	if p.Meta != nil {
		meta := make(map[string]string, len(p.Meta))
		for k, v := range p.Meta {
			meta[k] = v
		}
		p.Meta = meta
	}
	return p
}
