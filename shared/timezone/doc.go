// Package timezone holds the single location, read from APP_TIMEZONE, that
// availability slots are expressed in.
//
// Slots are stored as a calendar date plus wall-clock start and end times with no
// zone of their own. Appointments are stored as instants. The two meet in At,
// which places a slot's date and start time in the application location:
//
//	start := timezone.At(slot.AvailableDate, slot.StartTime, timezone.GetLocation())
//
// Parse and Format work in the same location, so a "2025-03-01" query and a
// "09:00" slot refer to the same day regardless of the host's TZ setting.
// Names must come from the IANA database, for example "UTC" or "Asia/Jakarta".
package timezone
