// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/toeirei/paydesk/internal/db"
	"github.com/toeirei/paydesk/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultBankNames seeds the bank registry when no list is given.
var DefaultBankNames = []string{
	"Banco Ciudad", "Banco Comafi", "Banco Credicoop", "Banco De San Juan",
	"Banco De Santa Cruz", "Banco Del Sol", "Banco Entre Ríos", "Banco Galicia",
	"Banco Hipotecario", "Banco Patagonia", "Banco Piano", "Banco Santa Fe",
	"Banco Santander", "Banco Supervielle", "Banco de Cordoba (Bancor)", "Banco BBVA",
	"Bica Modo", "Billetera Macro", "Billetera Ultra", "Bind Psp", "Blp", "Bna",
	"Brubank", "Buepp", "Claro Pay", "Click+", "Codigopago", "Credencial Payments",
	"Cuenta Dni", "Data 3.0", "Lemon", "Digipayments", "Easy Pagos", "Epagos",
	"Facaf", "Fertil Suma", "Finket", "Garpa", "Go Pay", "Hooli", "HSBC", "ICBC",
	"Koipay", "Lux 11", "Másbanco", "Mercado Pago", "Mi Bpn", "Modo",
	"Moni Online Sa", "N1u Level", "Naranja X", "Nbch24 Billetera", "Onda Siempre",
	"Pago24", "Paycloud", "Personal Pay", "Plus Pagos", "Prex", "Propago", "Pvs",
	"Reba", "Resimple", "Sidom Pay", "Sys", "Tach", "Tarjeta Urbana", "Tdk Labs",
	"Telepagos", "Totalcoin", "Ualá", "Unex", "Viapago", "Viumi", "+Simple",
}

// CreateBank adds a bank to the registry.
func (e *Engine) CreateBank(ctx context.Context, name string) (model.Bank, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Bank{}, &ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	var bank model.Bank
	err := e.inTx(ctx, "create bank", func(ctx context.Context, q *db.Queries) error {
		var err error
		bank, err = q.InsertBank(ctx, name)
		if err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return &ValidationError{Field: "name", Reason: "bank already exists", Err: err}
			}
			return err
		}
		return e.audit(ctx, q, "", ActionBankCreated, "name="+name)
	})
	return bank, err
}

// ListBanks returns all banks by name.
func (e *Engine) ListBanks(ctx context.Context) ([]model.Bank, error) {
	return e.store.Queries().ListBanks(ctx)
}

// GetBank loads a bank by name.
func (e *Engine) GetBank(ctx context.Context, name string) (model.Bank, error) {
	b, err := e.store.Queries().BankByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return model.Bank{}, storeError(err, "bank", name)
	}
	return b, nil
}

// DeleteBank removes a bank that no recipient references.
func (e *Engine) DeleteBank(ctx context.Context, name string) error {
	return e.inTx(ctx, "delete bank", func(ctx context.Context, q *db.Queries) error {
		b, err := q.BankByName(ctx, strings.TrimSpace(name))
		if err != nil {
			return storeError(err, "bank", name)
		}
		n, err := q.CountRecipientsForBank(ctx, b.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return &ConflictError{Reason: fmt.Sprintf("bank %q is used by %d recipient(s)", b.Name, n)}
		}
		if err := q.DeleteBank(ctx, b.ID); err != nil {
			return storeError(err, "bank", b.Name)
		}
		return e.audit(ctx, q, "", ActionBankDeleted, "name="+b.Name)
	})
}

// BankImportResult lists which names were added and which already existed.
type BankImportResult struct {
	Created []string
	Skipped []string
}

// ImportBanks adds every name not yet registered. Names are trimmed and
// blanks ignored, so repeated imports are harmless.
func (e *Engine) ImportBanks(ctx context.Context, names []string) (BankImportResult, error) {
	var res BankImportResult
	err := e.inTx(ctx, "import banks", func(ctx context.Context, q *db.Queries) error {
		res = BankImportResult{}
		seen := map[string]bool{}
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			_, err := q.BankByName(ctx, name)
			switch {
			case err == nil:
				res.Skipped = append(res.Skipped, name)
				continue
			case !errors.Is(err, db.ErrNotFound):
				return err
			}
			if _, err := q.InsertBank(ctx, name); err != nil {
				return err
			}
			if err := e.audit(ctx, q, "", ActionBankCreated, "name="+name); err != nil {
				return err
			}
			res.Created = append(res.Created, name)
		}
		return nil
	})
	return res, err
}

// ReadBankNames parses a bank list: a YAML sequence, a YAML mapping with a
// "banks" key, or plain text with one name per line.
func ReadBankNames(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err == nil && len(node.Content) == 1 {
		switch node.Content[0].Kind {
		case yaml.SequenceNode:
			var names []string
			if err := node.Content[0].Decode(&names); err == nil {
				return names, nil
			}
		case yaml.MappingNode:
			var doc struct {
				Banks []string `yaml:"banks"`
			}
			if err := node.Content[0].Decode(&doc); err == nil && len(doc.Banks) > 0 {
				return doc.Banks, nil
			}
		}
	}

	var names []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			names = append(names, line)
		}
	}
	return names, sc.Err()
}
