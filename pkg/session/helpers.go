package session

import (
	"fmt"
	"strconv"

	"github.com/uhyunpark/hyperlicked/pkg/consensus"
	"github.com/uhyunpark/hyperlicked/pkg/topology"
)

func consensusView(v uint64) consensus.View {
	return consensus.View(v)
}

func groupLeadersFor(view consensus.View, n, k int) []int {
	return topology.GroupLeaders(uint64(view), n, k)
}

func topologyMembers(s *Session, groupLeaderID int) []int {
	return topology.Members(uint64(s.currentView), s.Config.NodeCount, s.Config.BranchCount, groupLeaderID)
}

func nodeLabel(id int) string {
	return strconv.Itoa(id)
}

func parseTarget(to string) (int, error) {
	id, err := strconv.Atoi(to)
	if err != nil {
		return 0, fmt.Errorf("non-numeric vote target %q: %w", to, err)
	}
	return id, nil
}
