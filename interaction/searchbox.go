// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package interaction

type SearchBox struct {
	querier    Querier
	affordance SearchAffordance
}

func NewSearchBox(querier Querier, affordance SearchAffordance) *SearchBox {
	return &SearchBox{
		querier:    querier,
		affordance: affordance,
	}
}

func (b *SearchBox) Input(text string) {
	b.querier.Query(text)
}

func (b *SearchBox) Focus() {
	if b.affordance != nil {
		b.affordance.SetHighlighted(true)
	}
}

func (b *SearchBox) Blur() {
	if b.affordance != nil {
		b.affordance.SetHighlighted(false)
	}
}

// OutsideClick closes the results when the click landed outside the search
// area.
func (b *SearchBox) OutsideClick(inside bool) {
	if inside || b.affordance == nil {
		return
	}
	b.affordance.SetHighlighted(false)
	b.affordance.HideResults()
}
