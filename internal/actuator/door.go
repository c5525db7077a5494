package actuator

import (
	"time"

	"github.com/nerrad567/hearth/internal/mode"
)

// SetDoorState moves the door to target.
//
// The request is refused while the system is inactive, and in vacation
// mode unless target is DoorLocked. Requesting the current state does
// nothing. While the door is travelling, a request for a different state
// is queued and replaces any earlier queued request; it starts once the
// current travel commits.
func (c *Controller) SetDoorState(target DoorState) bool {
	if !c.guard("door", mode.DoorAllowed(c.Modes(), target == DoorLocked)) {
		return false
	}
	if !c.deviceReady(DeviceDoor) {
		return false
	}

	if c.Moving(DeviceDoor) {
		if target == c.doorTarget {
			c.doorQueued = nil
			return true
		}
		queued := target
		c.doorQueued = &queued
		c.logger.Debug("door request queued behind travel", "target", target, "travelling_to", c.doorTarget)
		return true
	}

	c.doorQueued = nil
	if target == c.door {
		return true
	}

	c.doorTarget = target
	c.changed()
	c.move(DeviceDoor, target.Angle(), c.opts.DoorTravel, func() { c.commitDoor(target) })
	return true
}

func (c *Controller) commitDoor(s DoorState) {
	c.door = s
	c.doorTarget = s
	c.lastDoorOp = c.now()
	if s == DoorLocked {
		c.autoCloseAt = time.Time{}
	}
	c.changed()
	c.logger.Info("door state committed", "state", s)

	if q := c.doorQueued; q != nil {
		c.doorQueued = nil
		c.SetDoorState(*q)
	}
}

// lockNow abandons any door travel and drives the servo straight to the
// locked angle.
func (c *Controller) lockNow() {
	c.doorQueued = nil
	c.autoCloseAt = time.Time{}
	if c.out.Door == nil {
		return
	}
	c.writeNow(DeviceDoor, DoorLocked.Angle())
	if c.door != DoorLocked || c.doorTarget != DoorLocked {
		c.lastDoorOp = c.now()
	}
	c.door = DoorLocked
	c.doorTarget = DoorLocked
	c.changed()
}

// AutoCloseDoor arms a one-shot deadline delay from now at which Tick locks
// the door. It arms nothing when the door is locked or already travelling
// to locked. Re-arming replaces the previous deadline.
func (c *Controller) AutoCloseDoor(delay time.Duration) bool {
	if !c.guard("auto-close", mode.CanActuate(c.Modes())) {
		return false
	}
	if !c.deviceReady(DeviceDoor) {
		return false
	}
	if c.doorTarget == DoorLocked {
		return false
	}
	c.autoCloseAt = c.now().Add(delay)
	c.changed()
	return true
}
