// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the authoritative package list of one manager together with its filtered view.
//
// A Catalog may be used from any goroutine. Its lock is never held while a repository call is running, so a long
// update does not block readers. Every repository call is guarded per package (check and update) or per catalog
// (load) so that at most one of each kind is in flight at a time.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/automa-saga/logx"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/hashgraph/pkgview/internal/pkgsource"
	"github.com/hashgraph/pkgview/internal/workflows/notify"
	"github.com/joomcode/errorx"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
)

// State is the lifecycle of a catalog.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateUnavailable
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is the outcome of the latest update, kept until acknowledged.
type Notification struct {
	PackageName string
	Success     bool
	Error       string
}

// Catalog is the per-manager package list.
type Catalog struct {
	repo  pkgsource.Repository
	group singleflight.Group
	// fetchMu serializes loads; a reload queues behind the running one.
	fetchMu sync.Mutex

	mu           sync.Mutex
	generation   uint64
	state        State
	err          *errorx.Error
	packages     []*models.Package
	visible      []*models.Package
	query        string
	loaded       bool
	notification *Notification
	onChange     func()
}

// New creates an idle catalog backed by repo.
func New(repo pkgsource.Repository) *Catalog {
	return &Catalog{
		repo:  repo,
		state: StateIdle,
	}
}

func (c *Catalog) Manager() models.Manager {
	return c.repo.Manager()
}

// Repository returns the adapter behind the catalog.
func (c *Catalog) Repository() pkgsource.Repository {
	return c.repo
}

// SetOnChange registers fn to be called after every state publication. fn runs on the goroutine that changed the
// state and must not block.
func (c *Catalog) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Catalog) changed() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Load fetches the package list. It does nothing when a previous load succeeded with a non-empty list. Callers that
// arrive while a load is running wait for it and share its result.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.loaded && len(c.packages) > 0 {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	_, err, _ := c.group.Do("load", func() (interface{}, error) {
		return nil, c.load(ctx)
	})
	return err
}

// reload invalidates every load started so far and runs a fresh one once the running load, if any, has returned.
// The invalidated load does not publish its result.
func (c *Catalog) reload(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	c.loaded = false
	c.mu.Unlock()

	return c.load(ctx)
}

// stale reports whether a load started at generation gen has been superseded. c.mu must be held.
func (c *Catalog) stale(gen uint64) bool {
	return gen != c.generation
}

func (c *Catalog) load(ctx context.Context) error {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	manager := c.repo.Manager()

	c.mu.Lock()
	gen := c.generation
	c.state = StateLoading
	c.err = nil
	c.mu.Unlock()
	c.changed()

	if !c.repo.IsAvailable(ctx) {
		logx.As().Info().Str("manager", manager.String()).Msg("Package manager is not available")
		err := pkgsource.NewNotInstalledError(manager)
		c.fail(gen, StateUnavailable, err)
		return err
	}

	pkgs, err := c.repo.FetchPackages(ctx)
	if err != nil {
		domainErr := pkgsource.Classify(err)
		logx.As().Error().Err(domainErr).Str("manager", manager.String()).Msg("Failed to load packages")

		state := StateError
		if errorx.IsOfType(domainErr, pkgsource.NotInstalledError) {
			state = StateUnavailable
		}
		c.fail(gen, state, domainErr)
		return domainErr
	}

	sorted := sortByName(pkgs)

	c.mu.Lock()
	if c.stale(gen) {
		c.mu.Unlock()
		logx.As().Debug().Str("manager", manager.String()).Msg("Discarding superseded package list")
		return nil
	}
	c.packages = sorted
	c.visible = filter(sorted, c.query)
	c.loaded = true
	c.state = StateReady
	c.mu.Unlock()

	logx.As().Debug().Str("manager", manager.String()).Int("count", len(sorted)).Msg("Packages loaded")
	c.changed()
	return nil
}

func (c *Catalog) fail(gen uint64, state State, err *errorx.Error) {
	c.mu.Lock()
	if c.stale(gen) {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.err = err
	c.packages = nil
	c.visible = nil
	c.loaded = false
	c.mu.Unlock()
	c.changed()
}

// Refresh forgets known latest versions and reloads unconditionally. A load that is already running is superseded:
// Refresh waits for it and then fetches again.
// In-progress flags are owned by the running check or update and clear when it returns; the reload replaces the
// records anyway.
func (c *Catalog) Refresh(ctx context.Context) error {
	c.mu.Lock()
	for _, p := range c.packages {
		p.LatestVersion = ""
	}
	c.mu.Unlock()

	return c.reload(ctx)
}

// Retry reloads after a failed load.
func (c *Catalog) Retry(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Search narrows the visible list to packages whose display name contains q, ignoring case.
// An empty q shows everything.
func (c *Catalog) Search(q string) {
	c.mu.Lock()
	c.query = q
	c.visible = filter(c.packages, q)
	c.mu.Unlock()
	c.changed()
}

func (c *Catalog) ClearSearch() {
	c.Search("")
}

// CheckLatestVersion asks the repository for the newest version of the package identified by id. It returns false
// when the package is unknown or a check for it is already running. Failures are absorbed: the latest version is
// left unknown.
func (c *Catalog) CheckLatestVersion(ctx context.Context, id models.Identity) bool {
	c.mu.Lock()
	p := c.find(id)
	if p == nil || p.CheckInProgress {
		c.mu.Unlock()
		return false
	}
	p.CheckInProgress = true
	snapshot := *p.Clone()
	c.mu.Unlock()
	c.changed()

	latest, err := c.repo.QueryLatestVersion(ctx, snapshot)

	c.mu.Lock()
	p.CheckInProgress = false
	if err != nil {
		p.LatestVersion = ""
	} else {
		p.LatestVersion = strings.TrimSpace(latest)
	}
	c.mu.Unlock()

	if err != nil {
		logx.As().Warn().Err(err).Str("package", id.String()).Msg("Failed to check latest version")
	}

	c.changed()
	return true
}

// UpdatePackage upgrades the package identified by id. It is a no-op while an update of the same package is running.
// Success and failure both publish a notification; success also forces a full reload. The package list is left
// untouched on failure.
func (c *Catalog) UpdatePackage(ctx context.Context, id models.Identity) error {
	c.mu.Lock()
	p := c.find(id)
	if p == nil {
		c.mu.Unlock()
		return errorx.IllegalArgument.New("package %q is not in the catalog", id.String()).
			WithProperty(errorx.PropertyPayload(), id.String())
	}
	if p.UpdateInProgress {
		c.mu.Unlock()
		return nil
	}
	p.UpdateInProgress = true
	snapshot := *p.Clone()
	c.mu.Unlock()
	c.changed()

	logx.As().Info().Str("package", id.String()).Msg("Updating package")
	err := c.repo.UpdatePackage(ctx, snapshot)

	c.mu.Lock()
	p.UpdateInProgress = false
	c.mu.Unlock()

	if err != nil {
		domainErr := pkgsource.Classify(err)
		c.publish(ctx, Notification{PackageName: id.Name, Success: false, Error: pkgsource.Describe(domainErr)}, domainErr)
		return domainErr
	}

	if loadErr := c.reload(ctx); loadErr != nil {
		logx.As().Warn().Err(loadErr).Str("package", id.String()).Msg("Reload after update failed")
	}

	c.publish(ctx, Notification{PackageName: id.Name, Success: true}, nil)
	return nil
}

func (c *Catalog) publish(ctx context.Context, n Notification, err error) {
	c.mu.Lock()
	c.notification = &n
	c.mu.Unlock()

	if n.Success {
		notify.As().UpdateSucceeded(ctx, c.repo.Manager(), n.PackageName)
	} else {
		notify.As().UpdateFailed(ctx, c.repo.Manager(), n.PackageName, err)
	}

	c.changed()
}

// Notification returns the pending notification, if any.
func (c *Catalog) Notification() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.notification == nil {
		return Notification{}, false
	}
	return *c.notification, true
}

func (c *Catalog) AcknowledgeNotification() {
	c.mu.Lock()
	c.notification = nil
	c.mu.Unlock()
	c.changed()
}

func (c *Catalog) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the failure of the last load, or nil.
func (c *Catalog) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return nil
	}
	return c.err
}

func (c *Catalog) IsLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Catalog) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// PackageCount returns the number of visible packages.
func (c *Catalog) PackageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.visible)
}

// Packages returns copies of all packages, sorted by name.
func (c *Catalog) Packages() []*models.Package {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneAll(c.packages)
}

// Visible returns copies of the packages matching the current search, sorted by name.
func (c *Catalog) Visible() []*models.Package {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneAll(c.visible)
}

// Package returns a copy of the package identified by id.
func (c *Catalog) Package(id models.Identity) (*models.Package, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.find(id)
	if p == nil {
		return nil, false
	}
	return p.Clone(), true
}

// Snapshot is a consistent copy of the catalog.
type Snapshot struct {
	Manager      models.Manager
	State        State
	Err          error
	Query        string
	Packages     []*models.Package
	Visible      []*models.Package
	Notification *Notification
}

func (c *Catalog) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Manager:  c.repo.Manager(),
		State:    c.state,
		Query:    c.query,
		Packages: cloneAll(c.packages),
		Visible:  cloneAll(c.visible),
	}
	if c.err != nil {
		s.Err = c.err
	}
	if c.notification != nil {
		n := *c.notification
		s.Notification = &n
	}
	return s
}

// find must be called with c.mu held.
func (c *Catalog) find(id models.Identity) *models.Package {
	for _, p := range c.packages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func sortByName(pkgs []*models.Package) []*models.Package {
	sorted := make([]*models.Package, 0, len(pkgs))
	for _, p := range pkgs {
		if p != nil {
			sorted = append(sorted, p)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return fold(sorted[i].Name()) < fold(sorted[j].Name())
	})
	return sorted
}

func filter(pkgs []*models.Package, q string) []*models.Package {
	if q == "" {
		return append([]*models.Package(nil), pkgs...)
	}

	needle := fold(q)
	var result []*models.Package
	for _, p := range pkgs {
		if strings.Contains(fold(p.DisplayName), needle) {
			result = append(result, p)
		}
	}
	return result
}

func cloneAll(pkgs []*models.Package) []*models.Package {
	result := make([]*models.Package, 0, len(pkgs))
	for _, p := range pkgs {
		result = append(result, p.Clone())
	}
	return result
}
