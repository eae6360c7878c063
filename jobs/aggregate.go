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

package jobs

// The aggregation functions are pure: they take a snapshot of records (see
// Registry.Records) and never touch the network or the registry.  Records
// without transfer stats are skipped; they carry no byte-level progress.

// AggregatePercentage computes overall progress as the ratio of summed
// transferred bytes to summed total bytes across the snapshot.  Returns
// ErrDivisionUndefined when the aggregate denominator is zero; an empty
// snapshot or one whose totals are all zero has no meaningful percentage.
func AggregatePercentage(records []*Record) (float64, error) {
	var transferred, total int64
	for _, rec := range records {
		if rec == nil || rec.Stats == nil {
			continue
		}
		transferred += rec.Stats.Bytes
		total += rec.Stats.Size
	}
	if total == 0 {
		return 0, ErrDivisionUndefined
	}
	return float64(transferred) / float64(total), nil
}

// AggregateSpeed sums the instantaneous transfer speeds.
func AggregateSpeed(records []*Record) float64 {
	var sum float64
	for _, rec := range records {
		if rec == nil || rec.Stats == nil {
			continue
		}
		sum += rec.Stats.Speed
	}
	return sum
}

// AggregateAverageSpeed sums the whole-transfer average speeds.
func AggregateAverageSpeed(records []*Record) float64 {
	var sum float64
	for _, rec := range records {
		if rec == nil || rec.Stats == nil {
			continue
		}
		sum += rec.Stats.SpeedAvg
	}
	return sum
}
