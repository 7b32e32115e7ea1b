// Package membership keeps the included/excluded device lists of a group being edited.
//
// Every device known at Seed time sits in exactly one of the two lists. Moves only change
// which side a device is on; they never add or drop devices.
package membership

import (
	"errors"
	"fmt"
	"sync"

	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
)

// ErrNotFound is returned when a move names a device absent from the source list
var ErrNotFound = errors.New("device not found")

// Partition is the pair of device lists edited in the group dialogs. It is safe for
// concurrent use.
type Partition struct {
	mu       sync.Mutex
	excluded []sdamodels.Device
	included []sdamodels.Device
	seeded   []string
}

// Seed splits allDevices by membership in currentMembers, keeping the order of allDevices.
// Members that are not in allDevices are ignored. Duplicate devices are kept as given.
func Seed(allDevices []sdamodels.Device, currentMembers []string) *Partition {
	members := make(map[string]struct{}, len(currentMembers))
	for _, id := range currentMembers {
		members[id] = struct{}{}
	}

	p := &Partition{
		excluded: make([]sdamodels.Device, 0, len(allDevices)),
		included: make([]sdamodels.Device, 0, len(currentMembers)),
	}
	for _, d := range allDevices {
		if _, ok := members[d.ID]; ok {
			p.included = append(p.included, d)
			continue
		}
		p.excluded = append(p.excluded, d)
	}
	p.seeded = sdamodels.DeviceIDs(p.included)

	return p
}

// MoveToIncluded moves the first excluded device with the given id to the end of the included list
func (p *Partition) MoveToIncluded(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	d, rest, err := take(p.excluded, id)
	if err != nil {
		return err
	}
	p.excluded = rest
	p.included = append(p.included, d)
	return nil
}

// MoveToExcluded moves the first included device with the given id to the end of the excluded list
func (p *Partition) MoveToExcluded(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	d, rest, err := take(p.included, id)
	if err != nil {
		return err
	}
	p.included = rest
	p.excluded = append(p.excluded, d)
	return nil
}

// MemberList returns the identifiers currently included, in list order
func (p *Partition) MemberList() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return sdamodels.DeviceIDs(p.included)
}

// Lists returns copies of both lists taken at the same instant
func (p *Partition) Lists() (excluded, included []sdamodels.Device) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sdamodels.Device(nil), p.excluded...), append([]sdamodels.Device(nil), p.included...)
}

// Included returns a copy of the included list
func (p *Partition) Included() []sdamodels.Device {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sdamodels.Device(nil), p.included...)
}

// Excluded returns a copy of the excluded list
func (p *Partition) Excluded() []sdamodels.Device {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sdamodels.Device(nil), p.excluded...)
}

// Changes returns the devices to join and to leave, relative to the membership at Seed time
func (p *Partition) Changes() (join, leave []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	current := sdamodels.DeviceIDs(p.included)
	return difference(current, p.seeded), difference(p.seeded, current)
}

func take(list []sdamodels.Device, id string) (sdamodels.Device, []sdamodels.Device, error) {
	for i, d := range list {
		if d.ID != id {
			continue
		}
		rest := make([]sdamodels.Device, 0, len(list)-1)
		rest = append(rest, list[:i]...)
		rest = append(rest, list[i+1:]...)
		return d, rest, nil
	}
	return sdamodels.Device{}, list, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// difference returns the elements of a that are not in b, in the order of a
func difference(a, b []string) []string {
	skip := make(map[string]struct{}, len(b))
	for _, id := range b {
		skip[id] = struct{}{}
	}
	out := make([]string, 0)
	for _, id := range a {
		if _, ok := skip[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
