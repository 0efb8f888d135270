// Package variant holds the naming tables that distinguish the Multi Sites and
// Sites Manager modules. Both modules provision the same record shapes; only the
// names, labels and config keys differ.
package variant

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kongondo/SitesManager-sub001/internal/messages"
)

// ErrUnknownVariant is returned by Lookup for names that are not registered.
var ErrUnknownVariant = errors.New(messages.VariantErrUnknown)

// Category identifies one of the four container/leaf template hierarchies.
type Category string

const (
	CategorySiteProfiles          Category = "site-profiles"
	CategoryInstalledSites        Category = "installed-sites"
	CategoryWireFiles             Category = "wire-files"
	CategoryInstallConfigurations Category = "install-configurations"
)

// FieldRole names a field slot inside a fieldgroup.
type FieldRole string

const (
	FieldTitle    FieldRole = "title"
	FieldSettings FieldRole = "settings"
	FieldFiles    FieldRole = "files"
)

// Files bundled with each module and copied into the host root.
const (
	SitesJSONSource   = "sites.json"
	SitesJSONDest     = "sites.json"
	IndexConfigSource = "index.config.txt"
	IndexConfigDest   = "index.config.php"
)

// Hierarchy describes one container template, its leaf template and the admin page
// created for the container.
type Hierarchy struct {
	Category       Category
	Container      string
	ContainerLabel string
	Leaf           string
	LeafLabel      string
	PageName       string
	PageTitle      string
	LeafFields     []FieldRole
}

// FileCopy maps a bundled source file to its destination in the host root.
type FileCopy struct {
	Source string
	Dest   string
}

// Variant is the complete naming table for one module.
type Variant struct {
	// Key is the CLI identifier, e.g. "multisites".
	Key string
	// Label is the human readable module title.
	Label string
	// ModuleClass is the parent module's registry name.
	ModuleClass string
	// ModulePage is the name of the admin page registered for the module.
	ModulePage string
	// Tag groups the templates in the host admin.
	Tag string
	// ConfigPrefix prefixes keys in the module configuration blob.
	ConfigPrefix string

	SettingsField string
	FilesField    string
	Hierarchies   []Hierarchy
	Copies        []FileCopy
}

// FullyInstalledKey is the config key flagged once installation completes.
func (v Variant) FullyInstalledKey() string {
	return v.ConfigPrefix + "FullyInstalled"
}

// ConfigKey returns the prefixed module config key for suffix.
func (v Variant) ConfigKey(suffix string) string {
	return v.ConfigPrefix + suffix
}

// FieldNames returns the names of the fields the module creates.
func (v Variant) FieldNames() []string {
	return []string{v.SettingsField, v.FilesField}
}

// FieldName resolves a role to its field name. The title role resolves to the
// host's built-in title field.
func (v Variant) FieldName(role FieldRole) string {
	switch role {
	case FieldSettings:
		return v.SettingsField
	case FieldFiles:
		return v.FilesField
	default:
		return string(FieldTitle)
	}
}

// TemplateNames returns all eight template names, containers first per hierarchy.
func (v Variant) TemplateNames() []string {
	names := make([]string, 0, len(v.Hierarchies)*2)
	for _, h := range v.Hierarchies {
		names = append(names, h.Container, h.Leaf)
	}
	return names
}

// ContainerTemplates returns the container template names.
func (v Variant) ContainerTemplates() []string {
	names := make([]string, 0, len(v.Hierarchies))
	for _, h := range v.Hierarchies {
		names = append(names, h.Container)
	}
	return names
}

// LeafTemplates returns the leaf template names.
func (v Variant) LeafTemplates() []string {
	names := make([]string, 0, len(v.Hierarchies))
	for _, h := range v.Hierarchies {
		names = append(names, h.Leaf)
	}
	return names
}

// PageNames returns the container page names.
func (v Variant) PageNames() []string {
	names := make([]string, 0, len(v.Hierarchies))
	for _, h := range v.Hierarchies {
		names = append(names, h.PageName)
	}
	return names
}

// DestFiles returns the destination filenames written into the host root.
func (v Variant) DestFiles() []string {
	names := make([]string, 0, len(v.Copies))
	for _, c := range v.Copies {
		names = append(names, c.Dest)
	}
	return names
}

// DefaultConfig returns the module's documented default configuration.
// A fresh map is returned on every call.
func (v Variant) DefaultConfig() map[string]any {
	return map[string]any{
		v.FullyInstalledKey():         0,
		v.ConfigKey("ItemsPerPage"):   10,
		v.ConfigKey("DateFormat"):     "Y-m-d H:i",
		v.ConfigKey("ShowSiteURLs"):   1,
		v.ConfigKey("DefaultProfile"): "",
		v.ConfigKey("InstallTimeout"): 300,
	}
}

func newVariant(key, label, class, slug, snake, configPrefix string) Variant {
	return Variant{
		Key:           key,
		Label:         label,
		ModuleClass:   class,
		ModulePage:    slug,
		Tag:           label,
		ConfigPrefix:  configPrefix,
		SettingsField: snake + "_settings",
		FilesField:    snake + "_files",
		Hierarchies: []Hierarchy{
			{
				Category:       CategorySiteProfiles,
				Container:      slug + "-site-profiles",
				ContainerLabel: label + ": Site Profiles",
				Leaf:           slug + "-site-profile",
				LeafLabel:      label + ": Site Profile",
				PageName:       "site-profiles",
				PageTitle:      "Site Profiles",
				LeafFields:     []FieldRole{FieldTitle, FieldSettings, FieldFiles},
			},
			{
				Category:       CategoryInstalledSites,
				Container:      slug + "-installed-sites",
				ContainerLabel: label + ": Installed Sites",
				Leaf:           slug + "-installed-site",
				LeafLabel:      label + ": Installed Site",
				PageName:       "installed-sites",
				PageTitle:      "Installed Sites",
				LeafFields:     []FieldRole{FieldTitle, FieldSettings},
			},
			{
				Category:       CategoryWireFiles,
				Container:      slug + "-wire-files",
				ContainerLabel: label + ": Wire Files",
				Leaf:           slug + "-wire-file",
				LeafLabel:      label + ": Wire File",
				PageName:       "wire-files",
				PageTitle:      "Wire Files",
				LeafFields:     []FieldRole{FieldTitle, FieldFiles},
			},
			{
				Category:       CategoryInstallConfigurations,
				Container:      slug + "-install-configurations",
				ContainerLabel: label + ": Install Configurations",
				Leaf:           slug + "-install-configuration",
				LeafLabel:      label + ": Install Configuration",
				PageName:       "install-configurations",
				PageTitle:      "Install Configurations",
				LeafFields:     []FieldRole{FieldTitle, FieldSettings},
			},
		},
		Copies: []FileCopy{
			{Source: SitesJSONSource, Dest: SitesJSONDest},
			{Source: IndexConfigSource, Dest: IndexConfigDest},
		},
	}
}

var registry = map[string]Variant{
	"multisites":   newVariant("multisites", "Multi Sites", "ProcessMultiSites", "multi-sites", "multi_sites", "multiSites"),
	"sitesmanager": newVariant("sitesmanager", "Sites Manager", "ProcessSitesManager", "sites-manager", "sites_manager", "sitesManager"),
}

// Lookup returns the variant registered under key. Matching ignores case and
// dashes, so "multi-sites" and "MultiSites" both resolve.
func Lookup(key string) (Variant, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "-", ""))
	v, ok := registry[normalized]
	if !ok {
		return Variant{}, fmt.Errorf(messages.VariantUnknownFmt, ErrUnknownVariant, key, strings.Join(Keys(), ", "))
	}
	return v, nil
}

// Keys returns the registered variant keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns every registered variant sorted by key.
func All() []Variant {
	out := make([]Variant, 0, len(registry))
	for _, k := range Keys() {
		out = append(out, registry[k])
	}
	return out
}
