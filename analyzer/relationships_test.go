package analyzer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/analyzer"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name             string
		followers        []string
		following        []string
		mutuals          []string
		notFollowingBack []string
		notFollowedBack  []string
	}{
		{
			name:             "OverlappingLists",
			followers:        []string{"a", "b", "c"},
			following:        []string{"b", "c", "d"},
			mutuals:          []string{"b", "c"},
			notFollowingBack: []string{"d"},
			notFollowedBack:  []string{"a"},
		},
		{
			name:             "NoFollowers",
			followers:        []string{},
			following:        []string{"x"},
			mutuals:          []string{},
			notFollowingBack: []string{"x"},
			notFollowedBack:  []string{},
		},
		{
			name:             "BothEmpty",
			followers:        nil,
			following:        nil,
			mutuals:          []string{},
			notFollowingBack: []string{},
			notFollowedBack:  []string{},
		},
		{
			name:             "MutualsFollowFollowingOrder",
			followers:        []string{"c", "b", "a"},
			following:        []string{"a", "b", "c"},
			mutuals:          []string{"a", "b", "c"},
			notFollowingBack: []string{},
			notFollowedBack:  []string{},
		},
		{
			name:             "DuplicatesArePreserved",
			followers:        []string{"a", "a", "z"},
			following:        []string{"a", "b", "b"},
			mutuals:          []string{"a"},
			notFollowingBack: []string{"b", "b"},
			notFollowedBack:  []string{"z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analyzer.Analyze(tt.followers, tt.following)

			if diff := cmp.Diff(tt.mutuals, a.Mutuals); diff != "" {
				t.Errorf("Mutuals mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.notFollowingBack, a.NotFollowingBack); diff != "" {
				t.Errorf("NotFollowingBack mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.notFollowedBack, a.NotFollowedBack); diff != "" {
				t.Errorf("NotFollowedBack mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnalyzeCountIdentities(t *testing.T) {
	followers := []string{"ana", "ben", "cat", "dan", "eve", "ben"}
	following := []string{"eve", "fox", "ana", "gus", "fox"}

	a := analyzer.Analyze(followers, following)

	if got := len(a.Mutuals) + len(a.NotFollowingBack); got != len(following) {
		t.Errorf("|mutuals|+|notFollowingBack| = %d, want %d", got, len(following))
	}

	// 以粉丝列表为源计数互关，duplicates 按粉丝列表中的出现次数计
	followingSet := map[string]bool{}
	for _, u := range following {
		followingSet[u] = true
	}
	mutualInFollowers := 0
	for _, u := range followers {
		if followingSet[u] {
			mutualInFollowers++
		}
	}
	if got := mutualInFollowers + len(a.NotFollowedBack); got != len(followers) {
		t.Errorf("mutuals(in followers)+|notFollowedBack| = %d, want %d", got, len(followers))
	}

	for _, u := range a.Mutuals {
		if u == "fox" || u == "gus" {
			t.Errorf("%q is not a follower but was reported as mutual", u)
		}
	}
}

func TestAnalyzeIsIdempotentAndPure(t *testing.T) {
	followers := []string{"a", "b", "c"}
	following := []string{"b", "c", "d"}

	first := analyzer.Analyze(followers, following)
	second := analyzer.Analyze(followers, following)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Analyze not idempotent (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, followers); diff != "" {
		t.Errorf("Analyze modified its input (-want +got):\n%s", diff)
	}

	// 结果中的切片不应与输入共享底层数组
	first.Followers[0] = "mutated"
	if followers[0] != "a" {
		t.Error("Analysis.Followers aliases the input slice")
	}
}

func TestFollowBackRate(t *testing.T) {
	a := analyzer.Analyze([]string{"a", "b", "c"}, []string{"b", "c", "d", "e"})
	if got := a.FollowBackRate(); got != 50 {
		t.Errorf("FollowBackRate() = %v, want 50", got)
	}

	empty := analyzer.Analyze([]string{"a"}, nil)
	if got := empty.FollowBackRate(); got != 0 {
		t.Errorf("FollowBackRate() with no following = %v, want 0", got)
	}
}

func TestFollowRatio(t *testing.T) {
	a := analyzer.Analyze([]string{"a", "b", "c", "d"}, []string{"a", "b"})
	ratio, ok := a.FollowRatio()
	if !ok || ratio != 2 {
		t.Errorf("FollowRatio() = (%v, %v), want (2, true)", ratio, ok)
	}

	if _, ok := analyzer.Analyze([]string{"a"}, nil).FollowRatio(); ok {
		t.Error("FollowRatio() with no following should be undefined")
	}
}
