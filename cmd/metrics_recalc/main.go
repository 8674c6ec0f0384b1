package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-tutor/internal/app"
	"github.com/yungbote/neurobridge-tutor/internal/services"
	"github.com/yungbote/neurobridge-tutor/internal/temporalx"
	"github.com/yungbote/neurobridge-tutor/internal/temporalx/temporalworker"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var learners idList
	var all, viaTemporal bool
	flag.Var(&learners, "learner", "learner_id to recalculate (repeatable)")
	flag.BoolVar(&all, "all", false, "recalculate every learner with answers")
	flag.BoolVar(&viaTemporal, "temporal", false, "start the recalculation workflow instead of running inline")
	flag.Parse()

	if all == (len(learners) > 0) {
		fmt.Println("pass exactly one of -all or -learner")
		os.Exit(2)
	}
	ids := make([]uuid.UUID, 0, len(learners))
	for _, s := range learners {
		id, err := uuid.Parse(s)
		if err != nil || id == uuid.Nil {
			fmt.Printf("invalid learner_id %q\n", s)
			os.Exit(2)
		}
		ids = append(ids, id)
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()
	ctx := context.Background()

	if viaTemporal {
		if application.Clients.Temporal == nil {
			fmt.Println("-temporal needs TEMPORAL_ADDRESS")
			os.Exit(1)
		}
		cfg := temporalx.LoadConfig()
		targets := learners
		if all {
			targets = idList{""}
		}
		for _, l := range targets {
			wfID, err := temporalworker.TriggerRecalculation(ctx, application.Clients.Temporal, cfg, l)
			if err != nil {
				fmt.Printf("enqueue: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("started workflow %s\n", wfID)
		}
		return
	}

	total := services.RecalcResult{}
	run := func(id *uuid.UUID) {
		res, err := application.Services.Metrics.Recalculate(ctx, id)
		if err != nil {
			fmt.Printf("recalculate: %v\n", err)
			os.Exit(1)
		}
		total.UpdatedCount += res.UpdatedCount
		total.LearnersProcessed += res.LearnersProcessed
		total.LearnersSkipped += res.LearnersSkipped
		total.ArmsRebuilt += res.ArmsRebuilt
		total.AbilityEstimates += res.AbilityEstimates
	}
	if all {
		run(nil)
	}
	for i := range ids {
		run(&ids[i])
	}

	out, _ := json.MarshalIndent(total, "", "  ")
	fmt.Println(string(out))
}
