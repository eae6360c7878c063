/***************************************************************
 *
 * Copyright (C) 2025, The rcpilot Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you
 * may not use this file except in compliance with the License.  You may
 * obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 ***************************************************************/

package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"golang.org/x/sync/errgroup"

	"github.com/rcpilot/rcpilot/controller"
	"github.com/rcpilot/rcpilot/jobs"
)

// waitWithProgress blocks until every tracked job is terminal while a
// single aggregate bar renders overall bytes, percentage and throughput.
// The bar reads registry snapshots; the poll loop is the only writer.
func waitWithProgress(ctx context.Context, ctrl *controller.Controller) error {
	displayCtx, stopDisplay := context.WithCancel(ctx)
	defer stopDisplay()

	progressCtr := mpb.NewWithContext(displayCtx)
	bar := progressCtr.AddBar(0,
		mpb.PrependDecorators(
			decor.Name("total", decor.WCSyncSpaceR),
			decor.CountersKibiByte("% .2f / % .2f"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
			decor.Name(" "),
			decor.AverageSpeed(decor.UnitKiB, "% .2f"),
		),
	)

	egrp, _ := errgroup.WithContext(displayCtx)
	egrp.Go(func() error {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-displayCtx.Done():
				return nil
			case <-ticker.C:
				renderAggregate(bar, ctrl.Registry().Records())
			}
		}
	})

	waitErr := ctrl.WaitAll(ctx, time.Second)

	// Final render so the bar reflects the last reconciled state before
	// the display shuts down.
	records := ctrl.Registry().Records()
	renderAggregate(bar, records)
	finishBar(bar, records)
	stopDisplay()
	if err := egrp.Wait(); err != nil {
		log.Debugln("Progress display shutdown:", err)
	}
	progressCtr.Wait()

	return waitErr
}

func renderAggregate(bar *mpb.Bar, records []*jobs.Record) {
	var transferred, total int64
	for _, rec := range records {
		if rec.Stats == nil {
			continue
		}
		transferred += rec.Stats.Bytes
		total += rec.Stats.Size
	}
	if total > 0 {
		bar.SetTotal(total, false)
		bar.SetCurrent(transferred)
	}
}

func finishBar(bar *mpb.Bar, records []*jobs.Record) {
	var total int64
	for _, rec := range records {
		if rec.Stats != nil {
			total += rec.Stats.Size
		}
	}
	bar.SetTotal(total, true)
}
