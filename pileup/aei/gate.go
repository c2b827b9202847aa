// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package aei

// PassesCoverageGate returns true iff at least minSamples of the count
// vectors each total threshold or more reads.
func PassesCoverageGate(counts []AlleleCounts, threshold, minSamples int) bool {
	n := 0
	for _, c := range counts {
		if int(c.Total()) >= threshold {
			n++
			if n >= minSamples {
				return true
			}
		}
	}
	return false
}
