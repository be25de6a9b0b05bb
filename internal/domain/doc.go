// Package domain models Massachusetts Department of Transportation (MassDOT)
// crash records and the read-only relational operations the dashboard runs
// over them.
//
// # Data Source
//
// Records come from the MassDOT Crash Data Portal 2017 export, sampled down to
// 10,000 rows ("2017_Crashes_10000_sample.csv"). The file is loaded once at
// startup by the csvfile adapter and never written. Only the columns listed
// on [Crash] are read; the export carries many more, which are ignored.
//
// # MassDOT Data Conventions
//
// Time format:
//
//	12-hour clock with meridiem, e.g. "04:58 PM" or "9:05 AM".
//	"12:xx AM" is midnight (hour 0); "12:xx PM" is noon (hour 12).
//	Parsed into an hour-of-day bucket by [ParseCrashHour].
//
// Severity ("CRASH_SEVERITY_DESCR" column):
//
//	Non-fatal injury
//	Fatal injury
//	Property damage only (none injured)
//
//	The export also contains "Not Reported" and "Unknown". Those rows are
//	kept verbatim but never match a severity selection.
//
// Manner of collision ("MANR_COLL_DESCR" column):
//
//	Free text such as "Rear-end", "Angle", "Single vehicle crash". The
//	dashboard calls this the crash cause and ranks it with [Table.RankCauses].
//
// Coordinates:
//
//	WGS-84 decimal degrees in "LAT" / "LON". Blank cells load as 0, and 0,0 is
//	treated as "no coordinates" since it is nowhere near Massachusetts.
//
// # Aggregation Semantics
//
// Pivots follow spreadsheet pivot-table conventions: only labels present in
// the filtered rows appear, both axes are sorted ascending, and absent
// combinations are zero-filled. Cause rankings sort by count descending with
// ties broken alphabetically so output is deterministic.
package domain
