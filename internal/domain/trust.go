package domain

// Trust scores written by the verification workflow.
const (
	TrustScoreApproved = 80
	TrustScoreRejected = 40
)

// ClampTrustScore keeps a trust score inside [0, 100].
func ClampTrustScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Models lists every table for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&Account{},
		&Profile{},
		&Exporter{},
		&VerificationRequest{},
		&TradeCard{},
		&Product{},
		&Document{},
		&ShipmentLog{},
		&AuditLog{},
	}
}
