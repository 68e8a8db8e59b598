package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AnalyticsPeriod string

const (
	PeriodDay   AnalyticsPeriod = "day"
	PeriodWeek  AnalyticsPeriod = "week"
	PeriodMonth AnalyticsPeriod = "month"
	PeriodYear  AnalyticsPeriod = "year"
)

var periodDays = map[AnalyticsPeriod]int{
	PeriodDay:   0,
	PeriodWeek:  7,
	PeriodMonth: 30,
	PeriodYear:  365,
}

func ParseAnalyticsPeriod(s string) (AnalyticsPeriod, error) {
	p := AnalyticsPeriod(s)
	if _, ok := periodDays[p]; !ok {
		return "", fmt.Errorf("unknown period %q", s)
	}
	return p, nil
}

// Since returns the start of the window: midnight of now's day, moved back by
// 7, 30 or 365 days for week, month and year.
func (p AnalyticsPeriod) Since(now time.Time) time.Time {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -periodDays[p])
}

// Analytics is the back-office dashboard for one period.
type Analytics struct {
	Period      AnalyticsPeriod `json:"period"`
	Since       time.Time       `json:"since"`
	Profit      decimal.Decimal `json:"profit"`
	OrderCount  int64           `json:"order_count"`
	ItemsSold   int64           `json:"items_sold"`
	NewUsers    int64           `json:"new_users"`
	AvgCheck    decimal.Decimal `json:"avg_check"`
	AvgRating   decimal.Decimal `json:"avg_rating"`
	ReviewCount int64           `json:"review_count"`
}
