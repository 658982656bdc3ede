package logger

import "testing"

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT 1":                                 "SELECT",
		"  with t as (select 1) select * from t":   "SELECT",
		"INSERT INTO chat_history (id) VALUES (1)": "INSERT",
		"(delete from vendors)":                    "DELETE",
		"":                                         "UNKNOWN",
		"VACUUM":                                   "UNKNOWN",
	}
	for sql, want := range cases {
		if got := OperationFromSQL(sql); got != want {
			t.Fatalf("OperationFromSQL(%q) = %q, want %q", sql, got, want)
		}
	}
}
