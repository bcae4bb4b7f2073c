package rulestore

import (
	"community-bot/model"
	"context"
	"fmt"
	"log"
)

// DefaultCategories is the taxonomy installed into an empty store.
var DefaultCategories = []model.Category{
	{Name: "General Rules", Prefix: "GR", Description: "Basic server rules that apply to everyone", Color: 0x3498DB, Emoji: "📋",
		Subcategories: []string{"Behavior", "Communication", "Account Rules", "General Conduct"}},
	{Name: "Roleplay Guidelines", Prefix: "RP", Description: "Rules for maintaining quality roleplay", Color: 0x2ECC71, Emoji: "🎭",
		Subcategories: []string{"Character Development", "Realistic Actions", "Meta-gaming", "Power-gaming", "Fear RP"}},
	{Name: "Gang Regulations", Prefix: "GG", Description: "Rules specific to gang activities and management", Color: 0xE74C3C, Emoji: "🏢",
		Subcategories: []string{"Gang Formation", "Territory Rules", "Gang Wars", "Recruitment", "Gang Events"}},
	{Name: "Vehicle Rules", Prefix: "VH", Description: "Transportation and vehicle-related regulations", Color: 0xF39C12, Emoji: "🚗",
		Subcategories: []string{"Driving Rules", "Vehicle Ownership", "Modifications", "Racing", "Traffic Laws"}},
	{Name: "Property Guidelines", Prefix: "PR", Description: "Property ownership and management rules", Color: 0x9B59B6, Emoji: "🏠",
		Subcategories: []string{"House Ownership", "Business Rules", "Property Sales", "Rent System", "Property Events"}},
	{Name: "Economic System", Prefix: "EC", Description: "Rules governing the server economy", Color: 0x1ABC9C, Emoji: "💰",
		Subcategories: []string{"Money Management", "Job Rules", "Trading", "Banking", "Investments"}},
	{Name: "Staff Protocols", Prefix: "ST", Description: "Rules and procedures for staff members", Color: 0xE67E22, Emoji: "👮",
		Subcategories: []string{"Admin Duties", "Moderator Guidelines", "Helper Responsibilities", "Punishment Guidelines", "Staff Conduct"}},
	{Name: "Event Rules", Prefix: "EV", Description: "Rules for server events and special activities", Color: 0x8E44AD, Emoji: "🎉",
		Subcategories: []string{"Event Participation", "Event Hosting", "Rewards System", "Special Events", "Community Events"}},
}

func minutes(n int64) *int64 {
	s := n * 60
	return &s
}

func amount(n int64) *int64 {
	return &n
}

// SampleRules is the starter rule set installed into an empty store.
var SampleRules = []model.Rule{
	{
		ID: "GR001", Category: "General Rules", Subcategory: "Behavior", Priority: model.PriorityHigh,
		Title:         "Respect All Players",
		Body:          "All players must treat each other with respect. Harassment, discrimination, or toxic behavior will result in immediate punishment.",
		Keywords:      []string{"respect", "harassment", "toxic", "behavior", "discrimination"},
		AppealProcess: "Submit appeal ticket with evidence within 48 hours",
		Tiers: []model.Tier{
			{Severity: 1, Action: model.ActionWarning, Fine: amount(5000), AppealEligible: true, Details: "Verbal warning + $5,000 fine"},
			{Severity: 2, Action: model.ActionMute, DurationSeconds: minutes(120), Fine: amount(10000), AppealEligible: true, Details: "2 hour mute + $10,000 fine"},
			{Severity: 3, Action: model.ActionTempBan, DurationSeconds: minutes(1440), Fine: amount(25000), AppealEligible: true, Details: "24 hour ban + $25,000 fine"},
			{Severity: 4, Action: model.ActionBan, Details: "Permanent ban - no appeal"},
		},
	},
	{
		ID: "GR002", Category: "General Rules", Subcategory: "General Conduct", Priority: model.PriorityCritical,
		Title:         "No Cheating or Exploiting",
		Body:          "The use of cheats, hacks, mods, or exploitation of game bugs is strictly prohibited and will result in permanent ban.",
		Keywords:      []string{"cheating", "hacks", "mods", "exploits", "bugs", "ban"},
		AppealProcess: "No appeals for cheating violations",
		Tiers: []model.Tier{
			{Severity: 1, Action: model.ActionBan, Details: "Immediate permanent ban"},
		},
	},
	{
		ID: "RP001", Category: "Roleplay Guidelines", Subcategory: "Character Development", Priority: model.PriorityHigh,
		Title:         "Stay in Character",
		Body:          "Players must maintain their character at all times during roleplay. Breaking character (OOC in IC) is not allowed.",
		Keywords:      []string{"character", "roleplay", "ooc", "ic", "breaking character"},
		AppealProcess: "Submit ticket explaining the situation",
		Tiers: []model.Tier{
			{Severity: 1, Action: model.ActionWarning, Fine: amount(2500), AppealEligible: true, Details: "Warning + $2,500 fine"},
			{Severity: 2, Action: model.ActionMute, DurationSeconds: minutes(30), Fine: amount(5000), AppealEligible: true, Details: "30 minute mute + $5,000 fine"},
			{Severity: 3, Action: model.ActionKick, Fine: amount(10000), AppealEligible: true, Details: "Kick from server + $10,000 fine"},
			{Severity: 4, Action: model.ActionTempBan, DurationSeconds: minutes(720), AppealEligible: true, Details: "12 hour ban"},
		},
	},
	{
		ID: "RP002", Category: "Roleplay Guidelines", Subcategory: "Realistic Actions", Priority: model.PriorityMedium,
		Title:         "Realistic Actions Only",
		Body:          "All actions must be realistic and appropriate for the roleplay scenario. Unrealistic stunts or actions are prohibited.",
		Keywords:      []string{"realistic", "actions", "stunts", "appropriate", "scenario"},
		AppealProcess: "Provide video evidence of the incident",
		Tiers: []model.Tier{
			{Severity: 1, Action: model.ActionWarning, Fine: amount(1000), AppealEligible: true, Details: "Warning + $1,000 fine"},
			{Severity: 2, Action: model.ActionVehicleImpound, DurationSeconds: minutes(60), Fine: amount(5000), AppealEligible: true, Details: "Vehicle impound (1 hour) + $5,000 fine"},
			{Severity: 3, Action: model.ActionTempBan, DurationSeconds: minutes(360), Fine: amount(15000), AppealEligible: true, Details: "6 hour ban + $15,000 fine"},
			{Severity: 4, Action: model.ActionTempBan, DurationSeconds: minutes(1440), AppealEligible: true, Details: "24 hour ban"},
		},
	},
	{
		ID: "VH001", Category: "Vehicle Rules", Subcategory: "Driving Rules", Priority: model.PriorityMedium,
		Title:         "Traffic Laws Must Be Followed",
		Body:          "Players must follow all traffic laws while driving. Reckless driving without RP reason is prohibited.",
		Keywords:      []string{"traffic", "driving", "laws", "reckless", "vehicle"},
		AppealProcess: "Submit dashcam footage or witness testimony",
		Tiers: []model.Tier{
			{Severity: 1, Action: model.ActionFine, Fine: amount(2000), AppealEligible: true, Details: "$2,000 traffic fine"},
			{Severity: 2, Action: model.ActionVehicleImpound, DurationSeconds: minutes(30), Fine: amount(5000), AppealEligible: true, Details: "Vehicle impound (30 min) + $5,000 fine"},
			{Severity: 3, Action: model.ActionVehicleImpound, DurationSeconds: minutes(120), Fine: amount(10000), AppealEligible: true, Details: "Vehicle impound (2 hours) + $10,000 fine + License suspension"},
			{Severity: 4, Action: model.ActionTempBan, DurationSeconds: minutes(720), Fine: amount(25000), AppealEligible: true, Details: "12 hour ban + $25,000 fine + Permanent license revocation"},
		},
	},
}

// SeedDefaults installs the default categories when none exist and the sample
// rules when the store holds no rules.
func (s *Store) SeedDefaults(ctx context.Context) error {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		for _, c := range DefaultCategories {
			if _, err := s.UpsertCategory(ctx, c); err != nil {
				return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
			}
		}
		log.Printf("Seeded %d default rule categories", len(DefaultCategories))
	}

	n, err := s.CountRules(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, r := range SampleRules {
		if _, err := s.UpsertRule(ctx, r, "system"); err != nil {
			return fmt.Errorf("failed to seed rule %s: %w", r.ID, err)
		}
	}
	log.Printf("Seeded %d sample rules", len(SampleRules))
	return nil
}
