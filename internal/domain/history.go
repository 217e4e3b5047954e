package domain

// HistoryLimit caps how many session records are kept.
const HistoryLimit = 50

// TrimHistory drops everything past HistoryLimit. The input is newest first.
func TrimHistory(records []SessionRecord) []SessionRecord {
	if len(records) > HistoryLimit {
		return records[:HistoryLimit]
	}
	return records
}

// PrependRecord returns a new history with rec at index 0.
func PrependRecord(history []SessionRecord, rec SessionRecord) []SessionRecord {
	out := make([]SessionRecord, 0, len(history)+1)
	out = append(out, rec)
	out = append(out, history...)
	return TrimHistory(out)
}
