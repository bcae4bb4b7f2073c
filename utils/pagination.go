package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// customIDLimit is Discord's maximum length for a component custom id.
const customIDLimit = 100

// PageCount returns how many pages of size perPage hold total items.
func PageCount(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// PageBounds returns the slice bounds of page (1-based) clamped to total.
func PageBounds(page, perPage, total int) (start, end int) {
	if page < 1 {
		page = 1
	}
	start = (page - 1) * perPage
	if start > total {
		start = total
	}
	end = start + perPage
	if end > total {
		end = total
	}
	return start, end
}

// CreatePaginationComponents creates previous/next buttons whose custom ids
// carry prefix, the target page and arg. arg is truncated so the id fits.
func CreatePaginationComponents(currentPage, totalPages int, prefix, arg string) []discordgo.MessageComponent {
	if totalPages <= 1 {
		return nil
	}

	id := func(page int) string {
		head := fmt.Sprintf("%s:%d:", prefix, page)
		rest := arg
		if len(head)+len(rest) > customIDLimit {
			rest = rest[:customIDLimit-len(head)]
		}
		return head + rest
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Previous",
					Style:    discordgo.PrimaryButton,
					Disabled: currentPage <= 1,
					CustomID: id(currentPage - 1),
				},
				discordgo.Button{
					Label:    "Next",
					Style:    discordgo.PrimaryButton,
					Disabled: currentPage >= totalPages,
					CustomID: id(currentPage + 1),
				},
			},
		},
	}
}

// ParsePaginationID splits a custom id built by CreatePaginationComponents.
func ParsePaginationID(customID, prefix string) (page int, arg string, ok bool) {
	rest, found := strings.CutPrefix(customID, prefix+":")
	if !found {
		return 0, "", false
	}
	num, arg, _ := strings.Cut(rest, ":")
	page, err := strconv.Atoi(num)
	if err != nil || page < 1 {
		return 0, "", false
	}
	return page, arg, true
}
