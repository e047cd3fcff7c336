package postgres

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE pattern that matches q literally anywhere
// in the column. Use with ESCAPE '\'.
func ContainsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
