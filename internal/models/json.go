package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BookEntry 日报中的书目条目
type BookEntry struct {
	BookName string `json:"book_name"`
	Quantity int64  `json:"quantity"`
}

// BookEntries 书目条目列表（JSON 列）
type BookEntries []BookEntry

// Total 数量合计
func (e BookEntries) Total() int64 {
	var total int64
	for _, item := range e {
		total += item.Quantity
	}
	return total
}

// Value 实现 driver.Valuer
func (e BookEntries) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner
func (e *BookEntries) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*e = BookEntries{}
		return nil
	}
	return json.Unmarshal(raw, e)
}

// DailyAverages 月报日均表现
type DailyAverages struct {
	AvgBooksSold float64 `json:"avg_books_sold"`
	AvgBooksFree float64 `json:"avg_books_free"`
	AvgHouses    float64 `json:"avg_houses"`
	AvgTeachings float64 `json:"avg_teachings"`
	AvgHours     float64 `json:"avg_hours"`
	DaysWorked   int64   `json:"days_worked"`
}

// Value 实现 driver.Valuer
func (a DailyAverages) Value() (driver.Value, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner
func (a *DailyAverages) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*a = DailyAverages{}
		return nil
	}
	return json.Unmarshal(raw, a)
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", value)
	}
}
