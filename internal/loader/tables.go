package loader

import (
	"time"

	"github.com/huangsam/sitpulse/internal/parquet"
	"github.com/huangsam/sitpulse/schema"
)

func membershipsFromCSV(t *csvTable) ([]schema.MembershipCount, error) {
	names := []string{"period", "country", "membership_type", "num_active"}
	idx, err := t.require(names...)
	if err != nil {
		return nil, err
	}

	out := make([]schema.MembershipCount, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		period, err := t.cell(row, line, idx[0], names[0]).time()
		if err != nil {
			return nil, err
		}
		n, err := t.cell(row, line, idx[3], names[3]).count()
		if err != nil {
			return nil, err
		}
		out = append(out, schema.MembershipCount{
			Period:         period,
			Country:        t.cell(row, line, idx[1], names[1]).str(),
			MembershipType: schema.MembershipType(t.cell(row, line, idx[2], names[2]).str()),
			NumActive:      n,
		})
	}
	return out, nil
}

func applicationsFromCSV(t *csvTable) ([]schema.Application, error) {
	names := []string{"suser_id", "assignment_id", "date_created", "last_modified", "oconfirmed", "sconfirmed", "request_id"}
	idx, err := t.require(names...)
	if err != nil {
		return nil, err
	}

	out := make([]schema.Application, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		c := func(k int) cell { return t.cell(row, line, idx[k], names[k]) }

		var app schema.Application
		if app.SitterID, err = c(0).id(); err != nil {
			return nil, err
		}
		if app.AssignmentID, err = c(1).id(); err != nil {
			return nil, err
		}
		if app.DateCreated, err = c(2).time(); err != nil {
			return nil, err
		}
		if app.LastModified, err = c(3).time(); err != nil {
			return nil, err
		}
		if app.OwnerConfirmed, err = c(4).flag(); err != nil {
			return nil, err
		}
		if app.SitterConfirmed, err = c(5).flag(); err != nil {
			return nil, err
		}
		rid, ok, err := c(6).optionalID()
		if err != nil {
			return nil, err
		}
		if ok {
			app.RequestID = &rid
		}
		out = append(out, app)
	}
	return out, nil
}

func sittersFromCSV(t *csvTable) ([]schema.Sitter, error) {
	names := []string{"user_id", "fst_start_date", "start_date", "expires_date", "billing_country"}
	idx, err := t.require(names...)
	if err != nil {
		return nil, err
	}

	out := make([]schema.Sitter, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		c := func(k int) cell { return t.cell(row, line, idx[k], names[k]) }

		var s schema.Sitter
		if s.UserID, err = c(0).id(); err != nil {
			return nil, err
		}
		if s.FirstStartDate, err = c(1).time(); err != nil {
			return nil, err
		}
		if s.StartDate, err = c(2).time(); err != nil {
			return nil, err
		}
		if s.ExpiresDate, err = c(3).time(); err != nil {
			return nil, err
		}
		s.BillingCountry = c(4).str()
		out = append(out, s)
	}
	return out, nil
}

func assignmentsFromCSV(t *csvTable) ([]schema.Assignment, error) {
	names := []string{"aid", "ouser_id", "sid", "created_date", "start_date", "end_date"}
	idx, err := t.require(names...)
	if err != nil {
		return nil, err
	}

	out := make([]schema.Assignment, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		c := func(k int) cell { return t.cell(row, line, idx[k], names[k]) }

		var a schema.Assignment
		if a.ID, err = c(0).id(); err != nil {
			return nil, err
		}
		if a.OwnerID, err = c(1).id(); err != nil {
			return nil, err
		}
		sid, ok, err := c(2).optionalID()
		if err != nil {
			return nil, err
		}
		if ok {
			a.SitterID = &sid
		}
		if a.CreatedDate, err = c(3).time(); err != nil {
			return nil, err
		}
		if a.StartDate, err = c(4).time(); err != nil {
			return nil, err
		}
		if a.EndDate, err = c(5).time(); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func ownersFromCSV(t *csvTable) ([]schema.Owner, error) {
	names := []string{"user_id", "joined_date", "fst_start_date", "start_date", "expires_date", "published_date", "billing_country"}
	idx, err := t.require(names...)
	if err != nil {
		return nil, err
	}

	out := make([]schema.Owner, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		c := func(k int) cell { return t.cell(row, line, idx[k], names[k]) }

		var o schema.Owner
		if o.UserID, err = c(0).id(); err != nil {
			return nil, err
		}
		if o.JoinedDate, err = c(1).time(); err != nil {
			return nil, err
		}
		if o.FirstStartDate, err = c(2).time(); err != nil {
			return nil, err
		}
		if o.StartDate, err = c(3).time(); err != nil {
			return nil, err
		}
		if o.ExpiresDate, err = c(4).time(); err != nil {
			return nil, err
		}
		if o.PublishedDate, err = c(5).time(); err != nil {
			return nil, err
		}
		o.BillingCountry = c(6).str()
		out = append(out, o)
	}
	return out, nil
}

func verificationsFromCSV(t *csvTable) ([]schema.Verification, error) {
	names := []string{"user_id", "standard_verif"}
	idx, err := t.require(names...)
	if err != nil {
		return nil, err
	}

	out := make([]schema.Verification, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		var v schema.Verification
		if v.UserID, err = t.cell(row, line, idx[0], names[0]).id(); err != nil {
			return nil, err
		}
		if v.StandardVerif, err = t.cell(row, line, idx[1], names[1]).time(); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// deref returns the UTC value of a nullable Parquet timestamp, or the zero time.
func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func derefFlag(v *int64) int {
	if v == nil {
		return 0
	}
	return int(*v)
}

func membershipsFromParquet(rows []parquet.MembershipRow) []schema.MembershipCount {
	out := make([]schema.MembershipCount, len(rows))
	for i, r := range rows {
		out[i] = schema.MembershipCount{
			Period:         r.Period.UTC(),
			Country:        r.Country,
			MembershipType: schema.MembershipType(r.MembershipType),
			NumActive:      int(r.NumActive),
		}
	}
	return out
}

func applicationsFromParquet(rows []parquet.ApplicationRow) []schema.Application {
	out := make([]schema.Application, len(rows))
	for i, r := range rows {
		out[i] = schema.Application{
			SitterID:        r.SitterID,
			AssignmentID:    r.AssignmentID,
			DateCreated:     deref(r.DateCreated),
			LastModified:    deref(r.LastModified),
			OwnerConfirmed:  derefFlag(r.OwnerConfirmed),
			SitterConfirmed: derefFlag(r.SitterConfirmed),
			RequestID:       r.RequestID,
		}
	}
	return out
}

func sittersFromParquet(rows []parquet.SitterRow) []schema.Sitter {
	out := make([]schema.Sitter, len(rows))
	for i, r := range rows {
		out[i] = schema.Sitter{
			UserID:         r.UserID,
			FirstStartDate: deref(r.FirstStartDate),
			StartDate:      deref(r.StartDate),
			ExpiresDate:    deref(r.ExpiresDate),
			BillingCountry: r.BillingCountry,
		}
	}
	return out
}

func assignmentsFromParquet(rows []parquet.AssignmentRow) []schema.Assignment {
	out := make([]schema.Assignment, len(rows))
	for i, r := range rows {
		a := schema.Assignment{
			ID:          r.ID,
			OwnerID:     r.OwnerID,
			CreatedDate: deref(r.CreatedDate),
			StartDate:   deref(r.StartDate),
			EndDate:     deref(r.EndDate),
		}
		if r.SitterID != nil {
			sid := *r.SitterID
			a.SitterID = &sid
		}
		out[i] = a
	}
	return out
}

func ownersFromParquet(rows []parquet.OwnerRow) []schema.Owner {
	out := make([]schema.Owner, len(rows))
	for i, r := range rows {
		out[i] = schema.Owner{
			UserID:         r.UserID,
			JoinedDate:     deref(r.JoinedDate),
			FirstStartDate: deref(r.FirstStartDate),
			StartDate:      deref(r.StartDate),
			ExpiresDate:    deref(r.ExpiresDate),
			PublishedDate:  deref(r.PublishedDate),
			BillingCountry: r.BillingCountry,
		}
	}
	return out
}

func verificationsFromParquet(rows []parquet.VerificationRow) []schema.Verification {
	out := make([]schema.Verification, len(rows))
	for i, r := range rows {
		out[i] = schema.Verification{UserID: r.UserID, StandardVerif: deref(r.StandardVerif)}
	}
	return out
}
