package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	selfupdate "github.com/creativeprojects/go-selfupdate"
	"go.uber.org/zap"
)

const (
	checkTimeout = 10 * time.Second
	applyTimeout = 2 * time.Minute
)

// ErrDevBuild is returned when asked to replace a binary that was not
// built from a tagged release.
var ErrDevBuild = errors.New("cannot update a development build, install from a release first")

// Release holds information about an available update.
type Release struct {
	Version      string
	URL          string
	ReleaseNotes string
}

// source finds the latest release of repo and replaces the running
// executable with it.
type source interface {
	Latest(ctx context.Context, repo string) (*Release, error)
	Replace(ctx context.Context, current, repo string) (*Release, error)
}

// Checker compares the running build against the latest GitHub release.
type Checker struct {
	repo    string
	current string
	src     source
	logger  *zap.Logger
}

func NewChecker(repo, current string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		repo:    repo,
		current: current,
		src:     githubSource{},
		logger:  logger.With(zap.String("component", "update")),
	}
}

// Check returns the newer release, or nil when the build is current, a dev
// build, or carries a version that does not parse.
func (c *Checker) Check(ctx context.Context) (*Release, error) {
	if isDev(c.current) {
		return nil, nil
	}
	current, err := parseSemver(c.current)
	if err != nil {
		c.logger.Debug("skipping update check", zap.String("version", c.current), zap.Error(err))
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	latest, err := c.src.Latest(ctx, c.repo)
	if err != nil {
		return nil, fmt.Errorf("detect latest release: %w", err)
	}
	if latest == nil {
		return nil, nil
	}
	latestVer, err := parseSemver(latest.Version)
	if err != nil || !latestVer.GreaterThan(current) {
		return nil, nil
	}
	c.logger.Info("update available",
		zap.String("current", c.current),
		zap.String("latest", latest.Version),
	)
	return latest, nil
}

// Apply downloads the latest release binary and replaces the current executable.
func (c *Checker) Apply(ctx context.Context) (*Release, error) {
	if isDev(c.current) {
		return nil, ErrDevBuild
	}

	ctx, cancel := context.WithTimeout(ctx, applyTimeout)
	defer cancel()

	rel, err := c.src.Replace(ctx, strings.TrimPrefix(c.current, "v"), c.repo)
	if err != nil {
		return nil, fmt.Errorf("update failed: %w", err)
	}
	c.logger.Info("updated", zap.String("from", c.current), zap.String("to", rel.Version))
	return rel, nil
}

// CompareVersions compares two semver strings.
// Returns -1 if current < latest, 0 if equal, 1 if current > latest.
// Unparseable versions are treated as less than any valid version.
func CompareVersions(current, latest string) int {
	cv, errC := parseSemver(current)
	lv, errL := parseSemver(latest)

	switch {
	case errC != nil && errL != nil:
		return 0
	case errC != nil:
		return -1
	case errL != nil:
		return 1
	}
	return cv.Compare(lv)
}

func isDev(v string) bool { return v == "" || v == "dev" }

// parseSemver strips a leading "v". Git-describe suffixes like
// "0.1.0-3-gabcdef" parse as prereleases of the base version.
func parseSemver(s string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(s, "v"))
}

type githubSource struct{}

func (githubSource) updater() (*selfupdate.Updater, error) {
	src, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("create github source: %w", err)
	}
	up, err := selfupdate.NewUpdater(selfupdate.Config{Source: src})
	if err != nil {
		return nil, fmt.Errorf("create updater: %w", err)
	}
	return up, nil
}

func (g githubSource) Latest(ctx context.Context, repo string) (*Release, error) {
	up, err := g.updater()
	if err != nil {
		return nil, err
	}
	latest, found, err := up.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &Release{Version: latest.Version(), URL: latest.URL, ReleaseNotes: latest.ReleaseNotes}, nil
}

func (g githubSource) Replace(ctx context.Context, current, repo string) (*Release, error) {
	up, err := g.updater()
	if err != nil {
		return nil, err
	}
	rel, err := up.UpdateSelf(ctx, current, selfupdate.ParseSlug(repo))
	if err != nil {
		return nil, err
	}
	return &Release{Version: rel.Version(), URL: rel.URL, ReleaseNotes: rel.ReleaseNotes}, nil
}
