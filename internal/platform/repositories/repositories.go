package repositories

import (
	"database/sql"
	"time"

	"frontdesk/internal/platform/models"
)

const orgColumns = `id, name, owner_external_id, phone_number, plan, plan_status, trial_ends_at,
	stripe_customer_id, stripe_subscription_id, balance_cents,
	auto_reload_enabled, auto_reload_threshold_cents, auto_reload_amount_cents,
	free_edits_remaining, free_regens_remaining, created_at, updated_at`

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *OrganizationRepository) CreateTx(tx *sql.Tx, org *models.Organization) error {
	_, err := tx.Exec(`
		INSERT INTO organizations (id, name, owner_external_id, phone_number, plan, plan_status, trial_ends_at,
			stripe_customer_id, stripe_subscription_id, balance_cents,
			auto_reload_enabled, auto_reload_threshold_cents, auto_reload_amount_cents,
			free_edits_remaining, free_regens_remaining, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.OwnerExternalID, org.PhoneNumber, org.Plan, org.PlanStatus, org.TrialEndsAt,
		org.StripeCustomerID, org.StripeSubscriptionID, org.BalanceCents,
		org.AutoReloadEnabled, org.AutoReloadThresholdCents, org.AutoReloadAmountCents,
		org.FreeEditsRemaining, org.FreeRegensRemaining, org.CreatedAt, org.UpdatedAt)
	return err
}

func scanOrganization(row interface{ Scan(...interface{}) error }) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(&org.ID, &org.Name, &org.OwnerExternalID, &org.PhoneNumber, &org.Plan, &org.PlanStatus, &org.TrialEndsAt,
		&org.StripeCustomerID, &org.StripeSubscriptionID, &org.BalanceCents,
		&org.AutoReloadEnabled, &org.AutoReloadThresholdCents, &org.AutoReloadAmountCents,
		&org.FreeEditsRemaining, &org.FreeRegensRemaining, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) GetByID(id string) (*models.Organization, error) {
	row := r.db.QueryRow(`SELECT `+orgColumns+` FROM organizations WHERE id = ?`, id)
	org, err := scanOrganization(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) UpdateSettings(org *models.Organization) error {
	_, err := r.db.Exec(`
		UPDATE organizations
		SET name = ?, phone_number = ?, auto_reload_enabled = ?, auto_reload_threshold_cents = ?,
			auto_reload_amount_cents = ?, updated_at = ?
		WHERE id = ?
	`, org.Name, org.PhoneNumber, org.AutoReloadEnabled, org.AutoReloadThresholdCents,
		org.AutoReloadAmountCents, time.Now().Unix(), org.ID)
	return err
}

func (r *OrganizationRepository) SetStripeCustomerID(id, customerID string) error {
	_, err := r.db.Exec(`UPDATE organizations SET stripe_customer_id = ?, updated_at = ? WHERE id = ?`,
		customerID, time.Now().Unix(), id)
	return err
}

func (r *OrganizationRepository) SetPlanStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE organizations SET plan_status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().Unix(), id)
	return err
}

func (r *OrganizationRepository) CreditBalance(id string, cents int64) error {
	_, err := r.db.Exec(`UPDATE organizations SET balance_cents = balance_cents + ?, updated_at = ? WHERE id = ?`,
		cents, time.Now().Unix(), id)
	return err
}

// DebitBalanceFloor subtracts cents from the balance, stopping at zero so the
// non-negative constraint holds. The usage ledger keeps the true cost.
func (r *OrganizationRepository) DebitBalanceFloor(tx *sql.Tx, id string, cents int64) error {
	_, err := tx.Exec(`
		UPDATE organizations
		SET balance_cents = MAX(balance_cents - ?, 0), updated_at = ?
		WHERE id = ?
	`, cents, time.Now().Unix(), id)
	return err
}

// ConsumeFreeEdit decrements the free edit counter. Returns false when none
// remain.
func (r *OrganizationRepository) ConsumeFreeEdit(tx *sql.Tx, id string) (bool, error) {
	res, err := tx.Exec(`
		UPDATE organizations
		SET free_edits_remaining = free_edits_remaining - 1, updated_at = ?
		WHERE id = ? AND free_edits_remaining > 0
	`, time.Now().Unix(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *OrganizationRepository) ConsumeFreeRegen(tx *sql.Tx, id string) (bool, error) {
	res, err := tx.Exec(`
		UPDATE organizations
		SET free_regens_remaining = free_regens_remaining - 1, updated_at = ?
		WHERE id = ? AND free_regens_remaining > 0
	`, time.Now().Unix(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *OrganizationRepository) ListTrialExpired(now int64) ([]*models.Organization, error) {
	rows, err := r.db.Query(`
		SELECT `+orgColumns+` FROM organizations
		WHERE plan_status = 'trialing' AND trial_ends_at IS NOT NULL AND trial_ends_at < ?
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrganizations(rows)
}

func (r *OrganizationRepository) ListAutoReloadDue() ([]*models.Organization, error) {
	rows, err := r.db.Query(`
		SELECT ` + orgColumns + ` FROM organizations
		WHERE auto_reload_enabled = 1 AND balance_cents < auto_reload_threshold_cents
			AND stripe_customer_id IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrganizations(rows)
}

func (r *OrganizationRepository) ListLowBalance() ([]*models.Organization, error) {
	rows, err := r.db.Query(`
		SELECT ` + orgColumns + ` FROM organizations
		WHERE auto_reload_enabled = 0 AND balance_cents < auto_reload_threshold_cents
			AND plan_status IN ('trialing', 'active')
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrganizations(rows)
}

func collectOrganizations(rows *sql.Rows) ([]*models.Organization, error) {
	var orgs []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

const userColumns = `id, external_id, organization_id, email, first_name, last_name, role, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateTx(tx *sql.Tx, user *models.User) error {
	_, err := tx.Exec(`
		INSERT INTO users (id, external_id, organization_id, email, first_name, last_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.ExternalID, user.OrganizationID, user.Email, user.FirstName, user.LastName, user.Role, user.CreatedAt, user.UpdatedAt)
	return err
}

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.ExternalID, &user.OrganizationID, &user.Email,
		&user.FirstName, &user.LastName, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByExternalID(externalID string) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE external_id = ?`, externalID)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetOwner(orgID string) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE organization_id = ? AND role = 'owner' LIMIT 1`, orgID)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
