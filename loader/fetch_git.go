package loader

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/go-git/go-billy/v5/memfs"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/NCSOPHAL/landscapist"
	pkgerrors "github.com/NCSOPHAL/landscapist/pkg/errors"
)

// gitFetcher reads an image out of a git repository without touching the
// local filesystem: the repository is cloned shallowly into memory and
// the target file extracted from the worktree.
//
// Source URLs take the form
//
//	git+https://host/owner/repo.git?ref=main#assets/logo.png
//
// where the fragment names the file inside the repository and the
// optional ref query pin points a branch.
type gitFetcher struct {
	maxBytes int64
}

func (f *gitFetcher) Schemes() []string {
	return []string{"git+https", "git+http", "git+ssh", "git+file"}
}

// gitTarget is a parsed git source URL.
type gitTarget struct {
	remote string
	ref    string
	path   string
	local  bool
}

func parseGitURL(raw string) (gitTarget, error) {
	u, err := url.Parse(strings.TrimPrefix(raw, "git+"))
	if err != nil {
		return gitTarget{}, err
	}
	if u.Fragment == "" {
		return gitTarget{}, fmt.Errorf("git source %q has no file fragment", raw)
	}

	target := gitTarget{
		ref:   u.Query().Get("ref"),
		path:  u.Fragment,
		local: u.Scheme == "file",
	}
	u.Fragment = ""
	u.RawQuery = ""
	if target.local {
		target.remote = u.Path
	} else {
		target.remote = u.String()
	}
	return target, nil
}

func (f *gitFetcher) Fetch(ctx context.Context, req landscapist.Request) ([]byte, landscapist.DataSource, error) {
	target, err := parseGitURL(req.URL())
	if err != nil {
		return nil, landscapist.DataSourceUnknown, pkgerrors.NewSourceError(req.URL(), err)
	}

	source := landscapist.DataSourceNetwork
	if target.local {
		source = landscapist.DataSourceLocal
	}

	cloneOpts := &git.CloneOptions{
		URL:   target.remote,
		Depth: 1,
	}
	if target.ref != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(target.ref)
		cloneOpts.SingleBranch = true
	}

	fs := memfs.New()
	if _, err := git.CloneContext(ctx, memory.NewStorage(), fs, cloneOpts); err != nil {
		return nil, landscapist.DataSourceUnknown,
			pkgerrors.NewFetchError(req.URL(), fmt.Errorf("failed to clone repository: %w", err))
	}

	file, err := fs.Open(target.path)
	if err != nil {
		return nil, landscapist.DataSourceUnknown,
			pkgerrors.NewFetchError(req.URL(), fmt.Errorf("file %q not in repository: %w", target.path, err))
	}
	defer file.Close()

	reader := io.Reader(file)
	if f.maxBytes > 0 {
		reader = io.LimitReader(file, f.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, landscapist.DataSourceUnknown, pkgerrors.NewFetchError(req.URL(), err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, landscapist.DataSourceUnknown,
			pkgerrors.NewFetchError(req.URL(), pkgerrors.ErrImageTooLarge)
	}

	return data, source, nil
}
