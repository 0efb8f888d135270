package host

import (
	"context"
	"errors"
	"fmt"
)

// Bootstrap creates the records every host site starts with: the built-in title
// field, the admin fieldgroup/template and the home, admin, setup and trash pages.
// Existing records are left untouched so Bootstrap can run repeatedly.
func Bootstrap(ctx context.Context, repos Repositories) error {
	title, err := ensureField(ctx, repos.Fields, Field{Name: TitleField, Type: TitleFieldType, Label: "Title"})
	if err != nil {
		return err
	}
	group, err := ensureFieldgroup(ctx, repos.Fieldgroups, Fieldgroup{Name: AdminTemplate, FieldIDs: []int64{title.ID}})
	if err != nil {
		return err
	}
	admin, err := ensureTemplate(ctx, repos.Templates, Template{Name: AdminTemplate, Label: "Admin", FieldgroupID: group.ID})
	if err != nil {
		return err
	}

	home, err := ensurePage(ctx, repos.Pages, Page{Name: HomePageName, Title: "Home", TemplateID: admin.ID, Status: StatusOn | StatusSystem})
	if err != nil {
		return err
	}
	adminPage, err := ensurePage(ctx, repos.Pages, Page{ParentID: home.ID, Name: AdminPageName, Title: "Admin", TemplateID: admin.ID, Status: StatusOn | StatusHidden | StatusSystem})
	if err != nil {
		return err
	}
	if _, err := ensurePage(ctx, repos.Pages, Page{ParentID: adminPage.ID, Name: SetupPageName, Title: "Setup", TemplateID: admin.ID, Status: StatusOn | StatusSystem}); err != nil {
		return err
	}
	if _, err := ensurePage(ctx, repos.Pages, Page{ParentID: home.ID, Name: TrashPageName, Title: "Trash", TemplateID: admin.ID, Status: StatusOn | StatusHidden | StatusSystem}); err != nil {
		return err
	}
	return nil
}

// RegisterModule performs the host's module registration step: it creates the
// module's admin page under setup and stores its initial configuration when none
// exists yet.
func RegisterModule(ctx context.Context, repos Repositories, class string, pageName string, title string, defaults map[string]any) (Page, error) {
	setup, err := ResolvePath(ctx, repos.Pages, HomePageName, AdminPageName, SetupPageName)
	if err != nil {
		return Page{}, err
	}
	admin, err := repos.Templates.Get(ctx, AdminTemplate)
	if err != nil {
		return Page{}, fmt.Errorf("lookup template %s: %w", AdminTemplate, err)
	}
	page, err := ensurePage(ctx, repos.Pages, Page{
		ParentID:   setup.ID,
		Name:       pageName,
		Title:      title,
		TemplateID: admin.ID,
		Status:     StatusOn,
		Meta:       map[string]string{"process": class},
	})
	if err != nil {
		return Page{}, err
	}
	current, err := repos.Modules.GetConfig(ctx, class)
	if err != nil {
		return Page{}, fmt.Errorf("read module config %s: %w", class, err)
	}
	if len(current) == 0 {
		if err := repos.Modules.SaveConfig(ctx, class, defaults); err != nil {
			return Page{}, fmt.Errorf("save module config %s: %w", class, err)
		}
	}
	return page, nil
}

// ResolvePath walks the page tree from the root by page names.
func ResolvePath(ctx context.Context, pages Pages, names ...string) (Page, error) {
	var current Page
	for _, name := range names {
		next, err := pages.FindOne(ctx, PageQuery{ParentID: current.ID, Name: name})
		if err != nil {
			return Page{}, fmt.Errorf("resolve page %s: %w", name, err)
		}
		current = next
	}
	return current, nil
}

func ensureField(ctx context.Context, fields Fields, want Field) (Field, error) {
	got, err := fields.Get(ctx, want.Name)
	if err == nil {
		return got, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Field{}, fmt.Errorf("lookup field %s: %w", want.Name, err)
	}
	return fields.Save(ctx, want)
}

func ensureFieldgroup(ctx context.Context, groups Fieldgroups, want Fieldgroup) (Fieldgroup, error) {
	got, err := groups.Get(ctx, want.Name)
	if err == nil {
		return got, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Fieldgroup{}, fmt.Errorf("lookup fieldgroup %s: %w", want.Name, err)
	}
	return groups.Save(ctx, want)
}

func ensureTemplate(ctx context.Context, templates Templates, want Template) (Template, error) {
	got, err := templates.Get(ctx, want.Name)
	if err == nil {
		return got, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Template{}, fmt.Errorf("lookup template %s: %w", want.Name, err)
	}
	return templates.Save(ctx, want)
}

func ensurePage(ctx context.Context, pages Pages, want Page) (Page, error) {
	got, err := pages.FindOne(ctx, PageQuery{ParentID: want.ParentID, Name: want.Name, IncludeTrashed: true})
	if err == nil {
		return got, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Page{}, fmt.Errorf("lookup page %s: %w", want.Name, err)
	}
	return pages.Save(ctx, want)
}
