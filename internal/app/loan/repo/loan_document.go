package repo

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/light-bringer/changegraph/internal/app/loan/domain"
)

// decodeDocument fills the relationships of snap from a stored document.
// Scalars of the loan itself come from their columns.
func decodeDocument(raw []byte, snap *domain.Snapshot) error {
	doc := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, doc); err != nil {
		return err
	}
	f := doc.GetFields()

	if apps := f["applications"].GetListValue(); apps != nil {
		snap.Applications = make([]*domain.Application, 0, len(apps.GetValues()))
		for _, v := range apps.GetValues() {
			a := v.GetStructValue().GetFields()
			snap.Applications = append(snap.Applications, domain.ReconstructApplication(
				a["id"].GetStringValue(),
				int(a["applicationIndex"].GetNumberValue()),
				decodeBorrower(a["borrower"]),
				decodeBorrower(a["coborrower"]),
			))
		}
	}

	if cc := f["closingCost"].GetStructValue(); cc != nil {
		c := cc.GetFields()
		amount, err := decodeMoney(c["amount"])
		if err != nil {
			return err
		}
		snap.ClosingCost = domain.ReconstructClosingCost(c["id"].GetStringValue(), amount, c["program"].GetStringValue())
	}

	if locks := f["fieldLocks"].GetListValue(); locks != nil {
		snap.FieldLocks = make([]*domain.FieldLock, 0, len(locks.GetValues()))
		for _, v := range locks.GetValues() {
			l := v.GetStructValue().GetFields()
			snap.FieldLocks = append(snap.FieldLocks,
				domain.ReconstructFieldLock(l["modelPath"].GetStringValue(), l["lockRemoved"].GetBoolValue()))
		}
	}

	if custom := f["customFields"].GetStructValue(); custom != nil {
		snap.CustomFields = make(map[string]string, len(custom.GetFields()))
		for k, v := range custom.GetFields() {
			snap.CustomFields[k] = v.GetStringValue()
		}
	}
	return nil
}

func decodeBorrower(v *structpb.Value) *domain.Borrower {
	s := v.GetStructValue()
	if s == nil {
		return nil
	}
	b := s.GetFields()
	return domain.ReconstructBorrower(
		b["firstName"].GetStringValue(),
		b["lastName"].GetStringValue(),
		b["taxId"].GetStringValue(),
		int(b["creditScore"].GetNumberValue()),
	)
}

func decodeMoney(v *structpb.Value) (*domain.Money, error) {
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok || s.StringValue == "" {
		return nil, nil
	}
	return domain.ParseMoney(s.StringValue)
}
