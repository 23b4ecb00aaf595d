package app

import (
	"context"
	"fmt"

	"pumon/internal/activity"
	"pumon/internal/puapi"
	"pumon/pkg/logx"
)

// tribeSourceType is the provenance label attached to tribe-feed activities.
const tribeSourceType = "社团"

// fetchPublic runs the public-category pipeline: global list, ended-list
// subtraction, keyword filter, per-activity detail, eligibility cascade,
// projection. A transport failure yields fewer (or zero) activities and is
// never fatal to the run; the returned error only describes the degradation
// so the run journal can record what broke.
func (a *App) fetchPublic(ctx context.Context) ([]activity.Activity, error) {
	log := a.log.With(logx.String("category", "public"))

	list, err := a.client.ListActivities(ctx, a.cfg.API.ListLimit)
	if err != nil {
		log.Warn("global listing unavailable", logx.Err(err))
		return nil, fmt.Errorf("global listing unavailable: %w", err)
	}
	var degraded error
	ended, err := a.client.ListEnded(ctx, a.cfg.API.ListLimit)
	if err != nil {
		// Subtraction degrades to status-label matching only.
		log.Warn("ended listing unavailable", logx.Err(err))
		degraded = fmt.Errorf("ended listing unavailable: %w", err)
	}

	endedIDs := make(map[activity.ID]struct{}, len(ended))
	for _, it := range ended {
		if it.ID != 0 {
			endedIDs[it.ID] = struct{}{}
		}
	}

	effective := list[:0:0]
	for _, it := range list {
		if it.ID == 0 {
			continue
		}
		if _, gone := endedIDs[it.ID]; gone {
			continue
		}
		// Double guard: the ended list is paginated and can miss stragglers.
		if activity.IsEndedStatus(it.StatusName) {
			continue
		}
		effective = append(effective, it)
	}
	log.Info("listing fetched",
		logx.Int("raw", len(list)), logx.Int("ended", len(endedIDs)), logx.Int("effective", len(effective)))

	rules := activity.Rules{
		Keywords:        a.cfg.Filters.Keywords,
		DropRestricted:  true,
		TargetCollegeID: a.cfg.Filters.TargetCollegeID,
		AllowYears:      a.cfg.Filters.AllowYears,
	}
	return a.cleanBatch(ctx, log, effective, rules, "", ""), degraded
}

// fetchTribe runs the tribe-category pipeline: my tribes, per-tribe event
// listings, ended filtering, keyword filter, detail cascade with restricting
// groups preserved. Like fetchPublic, the returned error is informational.
func (a *App) fetchTribe(ctx context.Context) ([]activity.Activity, error) {
	log := a.log.With(logx.String("category", "tribe"))

	tribes, err := a.client.MyTribes(ctx, a.cfg.API.TribeLimit)
	if err != nil {
		log.Warn("tribe listing unavailable", logx.Err(err))
		return nil, fmt.Errorf("tribe listing unavailable: %w", err)
	}

	var out []activity.Activity
	rules := activity.Rules{
		Keywords:        a.cfg.Filters.Keywords,
		DropRestricted:  false,
		TargetCollegeID: a.cfg.Filters.TargetCollegeID,
		AllowYears:      a.cfg.Filters.AllowYears,
	}

	unavailable := 0
	for _, tribe := range tribes {
		events, err := a.client.TribeEvents(ctx, tribe.ID, a.cfg.API.TribeEventLimit)
		if err != nil {
			log.Warn("tribe events unavailable",
				logx.String("tribe", tribe.Name), logx.Err(err))
			unavailable++
			continue
		}
		live := events[:0:0]
		for _, ev := range events {
			if ev.ID == 0 || activity.IsEndedStatus(ev.StatusName) {
				continue
			}
			live = append(live, ev)
		}
		if len(live) == 0 {
			continue
		}
		log.Info("tribe has live activities",
			logx.String("tribe", tribe.Name), logx.Int("count", len(live)))
		out = append(out, a.cleanBatch(ctx, log, live, rules, tribeSourceType, tribe.Name)...)
	}
	var degraded error
	if unavailable > 0 {
		degraded = fmt.Errorf("%d of %d tribe event listings unavailable", unavailable, len(tribes))
	}
	return out, degraded
}

// cleanBatch applies the keyword filter, fetches each surviving activity's
// detail and runs the eligibility cascade plus projection.
func (a *App) cleanBatch(ctx context.Context, log logx.Logger, items []puapi.ListItem, rules activity.Rules, sourceType, sourceName string) []activity.Activity {
	kept := items[:0:0]
	dropped := 0
	for _, it := range items {
		if rules.MatchesKeyword(it.Name) {
			dropped++
			continue
		}
		kept = append(kept, it)
	}
	if dropped > 0 {
		log.Info("keyword filter removed activities", logx.Int("dropped", dropped))
	}

	var out []activity.Activity
	var skipTribe, skipCollege, skipYear int
	for _, it := range kept {
		d, err := a.client.ActivityInfo(ctx, it.ID)
		if err != nil {
			log.Warn("detail unavailable", logx.String("id", it.ID.String()), logx.Err(err))
			continue
		}
		if d == nil {
			continue
		}
		switch rules.Eligible(d) {
		case activity.DropTribe:
			skipTribe++
			continue
		case activity.DropCollege:
			skipCollege++
			continue
		case activity.DropYear:
			skipYear++
			continue
		}
		out = append(out, activity.Project(d, it.ID, sourceType, sourceName))
	}

	log.Info("cleaning report",
		logx.Int("in", len(kept)),
		logx.Int("skip_tribe", skipTribe),
		logx.Int("skip_college", skipCollege),
		logx.Int("skip_year", skipYear),
		logx.Int("out", len(out)))
	return out
}
