// Command simulate runs one consensus-protocol simulation over a
// given schedule and topology, printing and archiving the result.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kestrelsim/consensim/config"
	"github.com/kestrelsim/consensim/core"
	"github.com/kestrelsim/consensim/engine"
	"github.com/kestrelsim/consensim/monitor"
	"github.com/kestrelsim/consensim/resultstore"
	"github.com/kestrelsim/consensim/schedule"
)

func main() {
	protocol := flag.String("type", "", "protocol: centralized|pow|pos")
	nodes := flag.Int("nodes", 0, "node count")
	scheduleName := flag.String("schedule", "", "schedule name (resolved under -schedule-dir) or a literal path if -schedule-dir is unset")
	scheduleDir := flag.String("schedule-dir", "", "directory of named schedule JSON files; empty treats -schedule as a literal path")
	topology := flag.String("topo", "", "topology: equidistant|wide-area")
	name := flag.String("name", "", "run name, used as the resultstore key and output file prefix")
	seed := flag.Int64("seed", 1, "PRNG seed")
	maxTicks := flag.Int64("max-ticks", 0, "safety tick bound; 0 uses the default")
	resultsDB := flag.String("results-db", "./results.leveldb", "path to the resultstore LevelDB directory")
	monitorAddr := flag.String("monitor-addr", "", "if set, serve live JSON-RPC progress at this address while the run executes")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *protocol != "" {
		cfg.Protocol = *protocol
	}
	if *nodes != 0 {
		cfg.NodeCount = *nodes
	}
	if *topology != "" {
		cfg.Topology = *topology
	}
	if *name != "" {
		cfg.RunName = *name
	}
	if *scheduleDir != "" {
		cfg.ScheduleDir = *scheduleDir
	}
	cfg.Seed = *seed
	if *maxTicks != 0 {
		cfg.MaxTicks = *maxTicks
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[simulate] invalid config: %v", err)
	}

	sched := schedule.Schedule{}
	schedulePath := schedule.ResolvePath(cfg.ScheduleDir, *scheduleName)
	if *scheduleName != "" {
		var err error
		sched, err = schedule.Load(schedulePath)
		if err != nil {
			log.Fatalf("[simulate] load schedule: %v", err)
		}
	}

	lm, rng, err := cfg.BuildLatencyModel()
	if err != nil {
		log.Fatalf("[simulate] build latency model: %v", err)
	}

	genesis := core.NewGenesisBlock("genesis")
	net := engine.New(cfg.NodeCount, genesis, lm, rng, sched, cfg.MaxTicks)

	proto, err := engine.Build(cfg.Protocol, net)
	if err != nil {
		log.Fatalf("[simulate] build protocol: %v", err)
	}
	net.SetProtocol(proto)

	if *monitorAddr != "" {
		handler := monitor.NewHandler(net)
		srv := monitor.NewServer(handler, "")
		go func() {
			if err := srv.ListenAndServe(*monitorAddr); err != nil {
				log.Printf("[simulate] monitor server stopped: %v", err)
			}
		}()
	}

	log.Printf("[simulate] running %s over %d nodes, %s topology, schedule=%s", cfg.Protocol, cfg.NodeCount, cfg.Topology, schedulePath)
	result := net.Run()

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("[simulate] marshal result: %v", err)
	}
	fmt.Println(string(data))

	outPath := cfg.RunName + ".results.json"
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		log.Printf("[simulate] write %s: %v", outPath, err)
	}

	db, err := resultstore.NewLevelDB(*resultsDB)
	if err != nil {
		log.Printf("[simulate] open resultstore: %v", err)
		return
	}
	defer db.Close()
	store := resultstore.New(db)
	if err := store.Put(cfg.RunName, cfg.Protocol, cfg.Topology, cfg.NodeCount, result); err != nil {
		log.Printf("[simulate] archive result: %v", err)
	}
}
