// Package host defines the record model and repository interfaces of the content
// host that the module installers provision against. Implementations live in the
// sqlstore and memstore subpackages.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
)

// ErrNotFound is returned by Get lookups when no record matches.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateName is returned when saving a new record whose name is taken.
var ErrDuplicateName = errors.New("record name already exists")

// Page status bits. Values match the host's own flags so status comparisons such as
// "status >= trash" keep their meaning.
const (
	StatusOn          = 1
	StatusLocked      = 4
	StatusSystem      = 16
	StatusHidden      = 1024
	StatusUnpublished = 2048
	StatusTrash       = 8192
)

// Names of records the host provides before any module is installed.
const (
	TitleField     = "title"
	AdminTemplate  = "admin"
	HomePageName   = "home"
	AdminPageName  = "processwire"
	SetupPageName  = "setup"
	TrashPageName  = "trash"
	TitleFieldType = "FieldtypePageTitle"
)

// Field is a named, typed unit of content attachable to templates.
type Field struct {
	ID      int64
	Name    string
	Type    string
	Label   string
	Options map[string]any
}

// Fieldgroup is an ordered collection of fields bound to one template.
type Fieldgroup struct {
	ID       int64
	Name     string
	FieldIDs []int64
}

// Template is a page schema: a fieldgroup plus structural rules.
type Template struct {
	ID           int64
	Name         string
	Label        string
	Tags         string
	FieldgroupID int64
	UseRoles     bool
	NoChildren   bool
	// NoParents is 0 for unrestricted, -1 when only one page may use the template.
	NoParents       int
	ChildTemplates  []int64
	ParentTemplates []int64
}

// Page is a content node instantiated from a template.
type Page struct {
	ID         int64
	ParentID   int64
	Name       string
	Title      string
	TemplateID int64
	Status     int
	Meta       map[string]string
}

// HasStatus reports whether every bit in flag is set.
func (p Page) HasStatus(flag int) bool {
	return p.Status&flag == flag
}

// PageQuery selects pages. Zero-valued fields do not constrain the match.
type PageQuery struct {
	ParentID   int64
	Name       string
	TemplateID int64
	// TemplateIDs matches any of the listed templates.
	TemplateIDs []int64
	// MinStatus matches pages whose status is at least this value.
	MinStatus int
	// IncludeTrashed includes pages carrying StatusTrash. MinStatus >= StatusTrash
	// implies it.
	IncludeTrashed bool
	Limit          int
}

// Fields is the field repository.
type Fields interface {
	Get(ctx context.Context, name string) (Field, error)
	Save(ctx context.Context, field Field) (Field, error)
	Delete(ctx context.Context, id int64) error
}

// Fieldgroups is the fieldgroup repository.
type Fieldgroups interface {
	Get(ctx context.Context, name string) (Fieldgroup, error)
	GetByID(ctx context.Context, id int64) (Fieldgroup, error)
	Save(ctx context.Context, group Fieldgroup) (Fieldgroup, error)
	Delete(ctx context.Context, id int64) error
}

// Templates is the template repository.
type Templates interface {
	Get(ctx context.Context, name string) (Template, error)
	Save(ctx context.Context, tpl Template) (Template, error)
	Delete(ctx context.Context, id int64) error
}

// Pages is the page repository.
type Pages interface {
	Get(ctx context.Context, id int64) (Page, error)
	FindOne(ctx context.Context, q PageQuery) (Page, error)
	Find(ctx context.Context, q PageQuery) ([]Page, error)
	Save(ctx context.Context, page Page) (Page, error)
	// Delete removes a page. With recursive set, descendants are removed too;
	// without it, deleting a page that has children fails.
	Delete(ctx context.Context, id int64, recursive bool) error
}

// Modules is the module registry holding per-module configuration blobs.
type Modules interface {
	GetConfig(ctx context.Context, class string) (map[string]any, error)
	SaveConfig(ctx context.Context, class string, data map[string]any) error
}

// Session surfaces user-visible results of an admin action.
type Session interface {
	Message(text string)
	Error(text string)
	Redirect(url string)
}

// Repositories bundles the repository handles a run needs.
type Repositories struct {
	Fields      Fields
	Fieldgroups Fieldgroups
	Templates   Templates
	Pages       Pages
	Modules     Modules
}

// ConfigInt reads an integer from a module config blob. Values decoded from JSON
// arrive as float64 or json.Number; ints written in-process stay ints.
func ConfigInt(cfg map[string]any, key string) (int, bool) {
	raw, ok := cfg[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// CloneConfig deep-copies a config blob through its JSON form.
func CloneConfig(cfg map[string]any) (map[string]any, error) {
	if cfg == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
