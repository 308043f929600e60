package victims

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"memorial-registry/internal/slug"
	"memorial-registry/pkg/utils"
)

// PostgresRepo implements Repository with raw SQL over database/sql (pgx stdlib).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const victimColumns = `id, full_name, native_name, slug, gender, age, date_of_birth, date_of_death,
city_of_death, province_or_state, country, biography, short_summary, occupation, education,
marital_status, children_count, verification_status, verification_notes, family_contact_private,
burial_location, social_links, submitted_by, confidence_score, search_document, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVictim(row rowScanner) (Victim, error) {
	var (
		v           Victim
		age         sql.NullInt32
		children    sql.NullInt32
		dob, dod    sql.NullTime
		status      string
		links       []byte
		submittedBy sql.NullString
	)
	err := row.Scan(
		&v.ID, &v.FullName, &v.NativeName, &v.Slug, &v.Gender, &age, &dob, &dod,
		&v.CityOfDeath, &v.ProvinceOrState, &v.Country, &v.Biography, &v.ShortSummary, &v.Occupation, &v.Education,
		&v.MaritalStatus, &children, &status, &v.VerificationNotes, &v.FamilyContactPrivate,
		&v.BurialLocation, &links, &submittedBy, &v.ConfidenceScore, &v.SearchDocument, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return Victim{}, err
	}
	v.Age = nullInt(age)
	v.ChildrenCount = nullInt(children)
	v.DateOfBirth = nullDate(dob)
	v.DateOfDeath = nullDate(dod)
	v.VerificationStatus = VerificationStatus(status)
	v.SubmittedBy = submittedBy.String
	v.SocialLinks = map[string]string{}
	if len(links) > 0 {
		if err := json.Unmarshal(links, &v.SocialLinks); err != nil {
			return Victim{}, fmt.Errorf("decode social_links of victim %d: %w", v.ID, err)
		}
	}
	return v, nil
}

func victimArgs(v Victim) ([]any, error) {
	links, err := json.Marshal(copyLinks(v.SocialLinks))
	if err != nil {
		return nil, err
	}
	return []any{
		v.FullName, v.NativeName, v.Slug, v.Gender, v.Age, v.DateOfBirth, v.DateOfDeath,
		v.CityOfDeath, v.ProvinceOrState, v.Country, v.Biography, v.ShortSummary, v.Occupation, v.Education,
		v.MaritalStatus, v.ChildrenCount, string(v.VerificationStatus), v.VerificationNotes, v.FamilyContactPrivate,
		v.BurialLocation, links, sql.NullString{String: v.SubmittedBy, Valid: v.SubmittedBy != ""},
		v.ConfidenceScore, v.SearchDocument,
	}, nil
}

func (r *PostgresRepo) InsertVictim(ctx context.Context, v Victim) (Victim, error) {
	args, err := victimArgs(v)
	if err != nil {
		return Victim{}, err
	}
	q := `
INSERT INTO victims (full_name, native_name, slug, gender, age, date_of_birth, date_of_death,
	city_of_death, province_or_state, country, biography, short_summary, occupation, education,
	marital_status, children_count, verification_status, verification_notes, family_contact_private,
	burial_location, social_links, submitted_by, confidence_score, search_document, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, now(), now())
RETURNING ` + victimColumns
	out, err := scanVictim(r.db.QueryRowContext(ctx, q, args...))
	if utils.IsUniqueViolation(err, "victims_slug_key") {
		return Victim{}, slug.ErrTaken
	}
	return out, err
}

// UpdateVictim locks the row with SELECT ... FOR UPDATE and writes the
// mutated state in the same transaction.
func (r *PostgresRepo) UpdateVictim(ctx context.Context, id int64, mutate func(Victim) (Victim, error)) (Victim, Victim, error) {
	var prior, out Victim
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		cur, err := scanVictim(tx.QueryRowContext(ctx, `SELECT `+victimColumns+` FROM victims WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if prior, err = r.attachTagsWith(ctx, tx, cur); err != nil {
			return err
		}
		next, err := mutate(prior)
		if err != nil {
			return err
		}
		next.ID = id
		out, err = writeVictim(ctx, tx, next)
		return err
	})
	if err != nil {
		return Victim{}, Victim{}, err
	}
	out, err = r.attachTags(ctx, out)
	if err != nil {
		return Victim{}, Victim{}, err
	}
	return prior, out, nil
}

func writeVictim(ctx context.Context, q utils.Querier, v Victim) (Victim, error) {
	args, err := victimArgs(v)
	if err != nil {
		return Victim{}, err
	}
	args = append(args, v.ID)
	stmt := `
UPDATE victims SET
	full_name = $1, native_name = $2, slug = $3, gender = $4, age = $5, date_of_birth = $6, date_of_death = $7,
	city_of_death = $8, province_or_state = $9, country = $10, biography = $11, short_summary = $12,
	occupation = $13, education = $14, marital_status = $15, children_count = $16, verification_status = $17,
	verification_notes = $18, family_contact_private = $19, burial_location = $20, social_links = $21,
	submitted_by = $22, confidence_score = $23, search_document = $24, updated_at = now()
WHERE id = $25
RETURNING ` + victimColumns
	out, err := scanVictim(q.QueryRowContext(ctx, stmt, args...))
	switch {
	case utils.IsUniqueViolation(err, "victims_slug_key"):
		return Victim{}, slug.ErrTaken
	case errors.Is(err, sql.ErrNoRows):
		return Victim{}, ErrNotFound
	}
	return out, err
}

// DeleteVictim spells the cascade out in one transaction instead of leaning
// on ON DELETE rules, so the memory and Postgres repos behave the same.
func (r *PostgresRepo) DeleteVictim(ctx context.Context, id int64) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		for _, q := range []string{
			`DELETE FROM victim_tags WHERE victim_id = $1`,
			`DELETE FROM sources WHERE victim_id = $1`,
			`DELETE FROM photos WHERE victim_id = $1`,
			`UPDATE submissions SET victim_id = NULL WHERE victim_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM victims WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return utils.RowsAffectedOne(res, ErrNotFound)
	})
}

func (r *PostgresRepo) GetVictim(ctx context.Context, id int64) (Victim, error) {
	return r.getVictimWhere(ctx, "id = $1", id)
}

func (r *PostgresRepo) GetVictimBySlug(ctx context.Context, s string) (Victim, error) {
	return r.getVictimWhere(ctx, "slug = $1", s)
}

func (r *PostgresRepo) getVictimWhere(ctx context.Context, cond string, arg any) (Victim, error) {
	v, err := scanVictim(r.db.QueryRowContext(ctx, `SELECT `+victimColumns+` FROM victims WHERE `+cond, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return Victim{}, ErrNotFound
	}
	if err != nil {
		return Victim{}, err
	}
	return r.attachTags(ctx, v)
}

func (r *PostgresRepo) ListVictims(ctx context.Context, ids []int64) ([]Victim, error) {
	q := `SELECT ` + victimColumns + ` FROM victims`
	var args []any
	if ids != nil {
		if len(ids) == 0 {
			return []Victim{}, nil
		}
		q += ` WHERE id = ANY($1)`
		args = append(args, ids)
	}
	q += ` ORDER BY id`
	vs, err := r.queryVictims(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, vs); err != nil {
		return nil, err
	}
	if ids == nil {
		return vs, nil
	}

	byID := make(map[int64]Victim, len(vs))
	for _, v := range vs {
		byID[v.ID] = v
	}
	out := make([]Victim, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *PostgresRepo) queryVictims(ctx context.Context, q string, args ...any) ([]Victim, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Victim, 0)
	for rows.Next() {
		v, err := scanVictim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) attachTags(ctx context.Context, v Victim) (Victim, error) {
	return r.attachTagsWith(ctx, r.db, v)
}

func (r *PostgresRepo) attachTagsWith(ctx context.Context, q utils.Querier, v Victim) (Victim, error) {
	vs := []Victim{v}
	if err := loadTagsWith(ctx, q, vs); err != nil {
		return Victim{}, err
	}
	return vs[0], nil
}

// loadTags fills Tags of every victim in vs with one query.
func (r *PostgresRepo) loadTags(ctx context.Context, vs []Victim) error {
	return loadTagsWith(ctx, r.db, vs)
}

func loadTagsWith(ctx context.Context, db utils.Querier, vs []Victim) error {
	if len(vs) == 0 {
		return nil
	}
	idx := make(map[int64]int, len(vs))
	ids := make([]int64, 0, len(vs))
	for i, v := range vs {
		idx[v.ID] = i
		ids = append(ids, v.ID)
	}
	const q = `
SELECT vt.victim_id, t.id, t.name, t.slug
FROM victim_tags vt
JOIN tags t ON t.id = vt.tag_id
WHERE vt.victim_id = ANY($1)
ORDER BY t.name
`
	rows, err := db.QueryContext(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			victimID int64
			t        Tag
		)
		if err := rows.Scan(&victimID, &t.ID, &t.Name, &t.Slug); err != nil {
			return err
		}
		i := idx[victimID]
		vs[i].Tags = append(vs[i].Tags, t)
	}
	return rows.Err()
}

func (r *PostgresRepo) VictimSlugExists(ctx context.Context, s string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM victims WHERE slug = $1 AND id <> $2)`, s, excludeID).Scan(&exists)
	return exists, err
}

func (r *PostgresRepo) SuggestNames(ctx context.Context, q string, limit int) ([]string, error) {
	const query = `
SELECT full_name
FROM victims
WHERE full_name ILIKE $1 ESCAPE '\'
ORDER BY full_name
LIMIT $2
`
	rows, err := r.db.QueryContext(ctx, query, "%"+escapeLike(q)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0, limit)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CountByStatus(ctx context.Context) (map[VerificationStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT verification_status, count(*) FROM victims GROUP BY verification_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[VerificationStatus]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[VerificationStatus(status)] = n
	}
	return out, rows.Err()
}

func (r *PostgresRepo) RecentVictims(ctx context.Context, limit int) ([]Victim, error) {
	vs, err := r.queryVictims(ctx, `SELECT `+victimColumns+` FROM victims ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return vs, r.loadTags(ctx, vs)
}

func tagWriteErr(err error) error {
	switch {
	case utils.IsUniqueViolation(err, "tags_name_key"):
		return ErrTagNameTaken
	case utils.IsUniqueViolation(err, "tags_slug_key"):
		return slug.ErrTaken
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	}
	return err
}

func (r *PostgresRepo) InsertTag(ctx context.Context, t Tag) (Tag, error) {
	err := r.db.QueryRowContext(ctx, `INSERT INTO tags (name, slug) VALUES ($1, $2) RETURNING id`, t.Name, t.Slug).Scan(&t.ID)
	if err != nil {
		return Tag{}, tagWriteErr(err)
	}
	return t, nil
}

func (r *PostgresRepo) UpdateTag(ctx context.Context, id int64, mutate func(Tag) (Tag, error)) (Tag, Tag, error) {
	var prior, t Tag
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT id, name, slug FROM tags WHERE id = $1 FOR UPDATE`, id).Scan(&prior.ID, &prior.Name, &prior.Slug)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if t, err = mutate(prior); err != nil {
			return err
		}
		t.ID = id
		_, err = tx.ExecContext(ctx, `UPDATE tags SET name = $1, slug = $2 WHERE id = $3`, t.Name, t.Slug, id)
		return tagWriteErr(err)
	})
	if err != nil {
		return Tag{}, Tag{}, err
	}
	return prior, t, nil
}

func (r *PostgresRepo) DeleteTag(ctx context.Context, id int64) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM victim_tags WHERE tag_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return utils.RowsAffectedOne(res, ErrNotFound)
	})
}

func (r *PostgresRepo) GetTag(ctx context.Context, id int64) (Tag, error) {
	var t Tag
	err := r.db.QueryRowContext(ctx, `SELECT id, name, slug FROM tags WHERE id = $1`, id).Scan(&t.ID, &t.Name, &t.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return Tag{}, ErrNotFound
	}
	return t, err
}

func (r *PostgresRepo) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Tag, 0)
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) TagSlugExists(ctx context.Context, s string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tags WHERE slug = $1 AND id <> $2)`, s, excludeID).Scan(&exists)
	return exists, err
}

func (r *PostgresRepo) AttachTag(ctx context.Context, victimID, tagID int64) (VictimTag, error) {
	l := VictimTag{VictimID: victimID, TagID: tagID}
	err := r.db.QueryRowContext(ctx, `INSERT INTO victim_tags (victim_id, tag_id) VALUES ($1, $2) RETURNING id`, victimID, tagID).Scan(&l.ID)
	switch {
	case utils.IsUniqueViolation(err, ""):
		return VictimTag{}, ErrAlreadyLinked
	case utils.IsForeignKeyViolation(err):
		return VictimTag{}, ErrNotFound
	case err != nil:
		return VictimTag{}, err
	}
	return l, nil
}

func (r *PostgresRepo) DetachTag(ctx context.Context, victimID, tagID int64) (VictimTag, error) {
	l := VictimTag{VictimID: victimID, TagID: tagID}
	err := r.db.QueryRowContext(ctx, `DELETE FROM victim_tags WHERE victim_id = $1 AND tag_id = $2 RETURNING id`, victimID, tagID).Scan(&l.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return VictimTag{}, ErrNotFound
	}
	if err != nil {
		return VictimTag{}, err
	}
	return l, nil
}

const sourceColumns = `id, victim_id, title, url, publisher_name, publication_date, credibility_score, notes`

func scanSource(row rowScanner) (Source, error) {
	var (
		s   Source
		pub sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.VictimID, &s.Title, &s.URL, &s.PublisherName, &pub, &s.CredibilityScore, &s.Notes); err != nil {
		return Source{}, err
	}
	s.PublicationDate = nullDate(pub)
	return s, nil
}

func childWriteErr(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows), utils.IsForeignKeyViolation(err):
		return ErrNotFound
	}
	return err
}

func (r *PostgresRepo) InsertSource(ctx context.Context, s Source) (Source, error) {
	q := `
INSERT INTO sources (victim_id, title, url, publisher_name, publication_date, credibility_score, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + sourceColumns
	out, err := scanSource(r.db.QueryRowContext(ctx, q, s.VictimID, s.Title, s.URL, s.PublisherName, s.PublicationDate, s.CredibilityScore, s.Notes))
	if err != nil {
		return Source{}, childWriteErr(err)
	}
	return out, nil
}

func (r *PostgresRepo) UpdateSource(ctx context.Context, id int64, mutate func(Source) (Source, error)) (Source, Source, error) {
	var prior, out Source
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		prior, err = scanSource(tx.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return childWriteErr(err)
		}
		s, err := mutate(prior)
		if err != nil {
			return err
		}
		q := `
UPDATE sources SET victim_id = $1, title = $2, url = $3, publisher_name = $4, publication_date = $5,
	credibility_score = $6, notes = $7
WHERE id = $8
RETURNING ` + sourceColumns
		out, err = scanSource(tx.QueryRowContext(ctx, q, s.VictimID, s.Title, s.URL, s.PublisherName, s.PublicationDate, s.CredibilityScore, s.Notes, id))
		return childWriteErr(err)
	})
	if err != nil {
		return Source{}, Source{}, err
	}
	return prior, out, nil
}

func (r *PostgresRepo) DeleteSource(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return utils.RowsAffectedOne(res, ErrNotFound)
}

func (r *PostgresRepo) GetSource(ctx context.Context, id int64) (Source, error) {
	s, err := scanSource(r.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, ErrNotFound
	}
	return s, err
}

func (r *PostgresRepo) ListSources(ctx context.Context, victimID int64) ([]Source, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE victim_id = $1 ORDER BY publication_date DESC NULLS LAST, title, id`, victimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Source, 0)
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const photoColumns = `id, victim_id, image_path, caption, photographer_credit, order_index, created_at`

func scanPhoto(row rowScanner) (Photo, error) {
	var p Photo
	err := row.Scan(&p.ID, &p.VictimID, &p.ImagePath, &p.Caption, &p.PhotographerCredit, &p.OrderIndex, &p.CreatedAt)
	return p, err
}

func (r *PostgresRepo) InsertPhoto(ctx context.Context, p Photo) (Photo, error) {
	q := `
INSERT INTO photos (victim_id, image_path, caption, photographer_credit, order_index, created_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING ` + photoColumns
	out, err := scanPhoto(r.db.QueryRowContext(ctx, q, p.VictimID, p.ImagePath, p.Caption, p.PhotographerCredit, p.OrderIndex))
	if err != nil {
		return Photo{}, childWriteErr(err)
	}
	return out, nil
}

func (r *PostgresRepo) UpdatePhoto(ctx context.Context, id int64, mutate func(Photo) (Photo, error)) (Photo, Photo, error) {
	var prior, out Photo
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		prior, err = scanPhoto(tx.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return childWriteErr(err)
		}
		p, err := mutate(prior)
		if err != nil {
			return err
		}
		q := `
UPDATE photos SET victim_id = $1, image_path = $2, caption = $3, photographer_credit = $4, order_index = $5
WHERE id = $6
RETURNING ` + photoColumns
		out, err = scanPhoto(tx.QueryRowContext(ctx, q, p.VictimID, p.ImagePath, p.Caption, p.PhotographerCredit, p.OrderIndex, id))
		return childWriteErr(err)
	})
	if err != nil {
		return Photo{}, Photo{}, err
	}
	return prior, out, nil
}

func (r *PostgresRepo) DeletePhoto(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return utils.RowsAffectedOne(res, ErrNotFound)
}

func (r *PostgresRepo) GetPhoto(ctx context.Context, id int64) (Photo, error) {
	p, err := scanPhoto(r.db.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Photo{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepo) ListPhotos(ctx context.Context, victimID int64) ([]Photo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE victim_id = $1 ORDER BY order_index, created_at, id`, victimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Photo, 0)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullInt(n sql.NullInt32) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int32)
	return &v
}

func nullDate(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	d := time.Date(t.Time.Year(), t.Time.Month(), t.Time.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
