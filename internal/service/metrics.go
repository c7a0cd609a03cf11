package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opJoin          = "join"
	opStart         = "start"
	opAssignMission = "assign_mission"
	opPlayCard      = "play_card"
	opFinish        = "finish"
)

var (
	writesAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_writes_accepted_total",
			Help: "Game document writes that won their transaction",
		},
		[]string{"action"},
	)
	writeConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_write_conflicts_total",
			Help: "Game document writes rejected on a stale nonce",
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(writesAccepted)
	prometheus.MustRegister(writeConflicts)
}
