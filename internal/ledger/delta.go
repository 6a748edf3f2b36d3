package ledger

// Line is a product quantity contribution from a document item.
type Line struct {
	ProductID int64
	Qty       float64
}

// ItemDelta computes per-product quantity differences between an old and a
// new item set. A positive delta means the new set consumes more of the
// product than before; a negative delta means some quantity must be given
// back. Products whose net quantity is unchanged are omitted.
func ItemDelta(old, new []Line) map[int64]float64 {
	deltas := make(map[int64]float64)
	for _, l := range new {
		deltas[l.ProductID] += l.Qty
	}
	for _, l := range old {
		deltas[l.ProductID] -= l.Qty
	}
	for id, d := range deltas {
		if d == 0 {
			delete(deltas, id)
		}
	}
	return deltas
}
