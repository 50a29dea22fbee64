package interval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Region is a query window [Start, End) on contig RefName.
type Region struct {
	RefName string
	Start   int
	End     int
}

// String returns the region in chrom:start-end form.
func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.RefName, r.Start, r.End)
}

// Overlaps checks whether [start, end) on refName intersects the region.
func (r Region) Overlaps(refName string, start, end int) bool {
	return refName == r.RefName && start < r.End && end > r.Start
}

// Clamp restricts [start, end] to the region's bounds.
func (r Region) Clamp(start, end int64) (int64, int64) {
	if start < int64(r.Start) {
		start = int64(r.Start)
	}
	if end > int64(r.End) {
		end = int64(r.End)
	}
	return start, end
}

// ParseRegion parses a region string of the form
//   <contig ID>:<start>-<end>
// Commas are accepted as thousands separators, e.g. chr7:152,743,763-156,779,243.
// end must be larger than start.
func ParseRegion(region string) (result Region, err error) {
	region = strings.Replace(region, ",", "", -1)
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegion: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		err = fmt.Errorf("interval.ParseRegion: missing ':' in region string %v", region)
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegion: empty contig ID")
		return
	}
	result.RefName = region[:colonPos]
	rangeStr := region[colonPos+1:]
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		err = fmt.Errorf("interval.ParseRegion: missing '-' in range string %v", rangeStr)
		return
	}
	var start, end int64
	if start, err = strconv.ParseInt(rangeStr[:dashPos], 10, 32); err != nil {
		err = fmt.Errorf("interval.ParseRegion: invalid start in %v: %v", region, err)
		return
	}
	if end, err = strconv.ParseInt(rangeStr[dashPos+1:], 10, 32); err != nil {
		err = fmt.Errorf("interval.ParseRegion: invalid end in %v: %v", region, err)
		return
	}
	if start < 0 || end == math.MaxInt32 {
		err = fmt.Errorf("interval.ParseRegion: position in region string %v out of range", region)
		return
	}
	if end <= start {
		err = fmt.Errorf("interval.ParseRegion: invalid region %v: begin has to be smaller than end", region)
		return
	}
	result.Start = int(start)
	result.End = int(end)
	return
}
