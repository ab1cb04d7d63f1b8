package topology

import "testing"

func TestLeaderRoundRobin(t *testing.T) {
	cases := []struct {
		view uint64
		n    int
		want int
	}{
		{0, 7, 0},
		{1, 7, 1},
		{7, 7, 0},
		{8, 7, 1},
	}
	for _, c := range cases {
		if got := Leader(c.view, c.n); got != c.want {
			t.Errorf("Leader(%d, %d) = %d, want %d", c.view, c.n, got, c.want)
		}
	}
}

func TestResolveRootHasNoParent(t *testing.T) {
	info := Resolve(0, 0, 7, 2)
	if info.Role != RoleRoot {
		t.Fatalf("node 0 at view 0 should be root, got %s", info.Role)
	}
	if info.ParentID != -1 {
		t.Fatalf("root should have ParentID -1, got %d", info.ParentID)
	}
}

func TestResolveGroupLeaderAndMembersAgree(t *testing.T) {
	const n, k = 9, 3
	view := uint64(0)

	leaders := GroupLeaders(view, n, k)
	if len(leaders) == 0 {
		t.Fatal("expected at least one group leader")
	}

	for _, gl := range leaders {
		info := Resolve(view, gl, n, k)
		if info.Role != RoleGroupLeader {
			t.Errorf("node %d should resolve to group_leader, got %s", gl, info.Role)
		}
		for _, member := range Members(view, n, k, gl) {
			mInfo := Resolve(view, member, n, k)
			if mInfo.Role != RoleMember {
				t.Errorf("node %d should resolve to member, got %s", member, mInfo.Role)
			}
			if mInfo.ParentID != gl {
				t.Errorf("member %d should report parent %d, got %d", member, gl, mInfo.ParentID)
			}
		}
	}
}

func TestResolveIsPureFunction(t *testing.T) {
	a := Resolve(3, 5, 10, 3)
	b := Resolve(3, 5, 10, 3)
	if a != b {
		t.Fatalf("Resolve is not pure: %+v != %+v", a, b)
	}
}

func TestEveryNonLeaderNodeHasAParent(t *testing.T) {
	const n, k = 10, 3
	for id := 0; id < n; id++ {
		info := Resolve(1, id, n, k)
		if info.Role == RoleRoot {
			continue
		}
		if info.ParentID < 0 {
			t.Errorf("node %d (%s) has no parent", id, info.Role)
		}
	}
}
