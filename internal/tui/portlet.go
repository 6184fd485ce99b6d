package tui

// Portlet IDs of the skins' menus.
const (
	PortletPersonal = "p-personal"
	PortletActions  = "p-cactions"
)

// Launcher link of the gadget.
const (
	LauncherID     = "citron-spam-gadget"
	LauncherLabel  = "Citron/Spam"
	LauncherTarget = "/wiki/Project:Citron/Spam"
)

// PortletForSkin returns the menu the launcher goes into: the personal
// menu on minerva (mobile), the page actions menu elsewhere.
func PortletForSkin(skin string) string {
	if skin == "minerva" {
		return PortletPersonal
	}
	return PortletActions
}

// PortletLink is a menu entry.
type PortletLink struct {
	Portlet string
	Target  string
	Label   string
	ID      string
	Tooltip string
}

// Portlets holds the menu entries added to the page, at most one per ID.
type Portlets struct {
	links []PortletLink
}

// AddPortletLink adds a link unless one with the same ID exists. It returns
// the entry registered under id and whether it was added by this call.
func (p *Portlets) AddPortletLink(portlet, target, label, id, tooltip string) (PortletLink, bool) {
	for _, l := range p.links {
		if l.ID == id {
			return l, false
		}
	}
	l := PortletLink{Portlet: portlet, Target: target, Label: label, ID: id, Tooltip: tooltip}
	p.links = append(p.links, l)
	return l, true
}

// Has reports whether a link with id exists.
func (p *Portlets) Has(id string) bool {
	for _, l := range p.links {
		if l.ID == id {
			return true
		}
	}
	return false
}

// Links returns the entries in insertion order.
func (p *Portlets) Links() []PortletLink {
	out := make([]PortletLink, len(p.links))
	copy(out, p.links)
	return out
}
