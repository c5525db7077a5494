// Package schedule applies hour-window rules to the fan, window and door.
//
// A Schedule names one device, an hour window [StartHour, EndHour) and a
// payload. Every engine tick the wall-clock hour in the site timezone is
// checked against each enabled schedule: inside the window the payload is
// applied, outside it the device default (fan OFF, window 0%, door LOCKED).
// When several schedules govern the same device the last one applied in
// list order wins; there is no priority arbitration.
//
// Windows whose start is after their end do not wrap past midnight unless
// WrapMidnight is set on the schedule.
//
// A manual command on a device overrides its schedules until one of them
// next changes between active and inactive.
//
// Schedules are persisted in SQLite and cached by Registry:
//
//	repo := schedule.NewSQLiteRepository(db.DB)
//	reg := schedule.NewRegistry(repo)
//	if err := reg.RefreshCache(ctx); err != nil { ... }
//	engine := schedule.NewEngine(reg, actuators, loc)
package schedule
