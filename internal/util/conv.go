package util

import "time"

// SameDay 两个时间是否落在同一日历日
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsYesterday 判断t是否为ref的前一个日历日
func IsYesterday(t, ref time.Time) bool {
	return SameDay(t, ref.AddDate(0, 0, -1))
}
