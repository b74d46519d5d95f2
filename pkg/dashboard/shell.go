package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/illegalcall/codecraft/internal/models"
)

type Tab string

const (
	TabProjects   Tab = "projects"
	TabGenerator  Tab = "generator"
	TabTemplates  Tab = "templates"
	TabDeployment Tab = "deployment"
	TabSettings   Tab = "settings"
)

// Tabs lists the sidebar entries in display order.
var Tabs = []Tab{TabProjects, TabGenerator, TabTemplates, TabDeployment, TabSettings}

var ErrUnknownTab = errors.New("unknown tab")

func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// fetchesProjects reports whether opening t loads the project list.
func (t Tab) fetchesProjects() bool {
	return t == TabProjects || t == TabDeployment
}

// ProjectLister loads the signed-in user's projects. *Client implements it.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
}

// Shell holds the dashboard navigation state for one signed-in user.
type Shell struct {
	user     models.User
	projects ProjectLister

	mu          sync.Mutex
	active      Tab
	sidebarOpen bool
	list        []models.Project
}

// NewShell opens on the projects tab with the sidebar closed. It does not
// fetch; call SelectTab(TabProjects) to load the list.
func NewShell(user models.User, projects ProjectLister) *Shell {
	return &Shell{user: user, projects: projects, active: TabProjects}
}

func (s *Shell) User() models.User {
	return s.user
}

func (s *Shell) ActiveTab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SelectTab switches tabs. The projects and deployment tabs refresh the project list.
func (s *Shell) SelectTab(ctx context.Context, tab Tab) error {
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}

	s.mu.Lock()
	s.active = tab
	s.mu.Unlock()

	if !tab.fetchesProjects() {
		return nil
	}

	list, err := s.projects.ListProjects(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.list = list
	s.mu.Unlock()
	return nil
}

func (s *Shell) ToggleSidebar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebarOpen = !s.sidebarOpen
	return s.sidebarOpen
}

func (s *Shell) SidebarOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sidebarOpen
}

// Title is the page heading for the active tab.
func (s *Shell) Title() string {
	tab := string(s.ActiveTab())
	return strings.ToUpper(tab[:1]) + tab[1:]
}

func (s *Shell) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Project(nil), s.list...)
}

// Deployments is the deployed subset of the last fetched project list.
func (s *Shell) Deployments() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deployed []models.Project
	for _, p := range s.list {
		if p.Status == models.StatusDeployed {
			deployed = append(deployed, p)
		}
	}
	return deployed
}

func (s *Shell) ShowAdmin() bool {
	return s.user.IsAdmin()
}

// UsageText is the sidebar quota line, shown for free plans only.
func (s *Shell) UsageText() string {
	if s.user.PlanName() != models.PlanFree {
		return ""
	}
	return fmt.Sprintf("%d/%d generations used", s.user.GenerationsUsed, s.user.Limit())
}

// RemainingText is the generator form's quota line.
func (s *Shell) RemainingText() string {
	return fmt.Sprintf("AI generations remaining: %d/%d", s.user.Remaining(), s.user.Limit())
}
