package verify

import (
	"context"
	"fmt"

	"github.com/planmd/planmd/internal/gitx"
)

// CommitsResult reports which hash tokens resolve to real commit
// objects.
type CommitsResult struct {
	Result
	Valid   []string `json:"valid"`
	Invalid []string `json:"invalid"`
}

// Commits confirms each hash-like token resolves to a commit object (not
// a blob, tree, or tag). Passing zero hashes is a usage error.
func Commits(ctx context.Context, git *gitx.Client, hashes []string) (*CommitsResult, error) {
	if len(hashes) == 0 {
		return nil, fmt.Errorf("no hashes given")
	}

	res := &CommitsResult{}
	for _, h := range hashes {
		if !gitx.LooksLikeHash(h) {
			res.Invalid = append(res.Invalid, h)
			res.fail(fmt.Sprintf("not a hash: %s", h))
			continue
		}
		if git.IsCommit(ctx, h) {
			res.Valid = append(res.Valid, h)
			continue
		}
		res.Invalid = append(res.Invalid, h)
		res.fail(fmt.Sprintf("no commit object for %s", h))
	}

	res.finalize()
	return res, nil
}
