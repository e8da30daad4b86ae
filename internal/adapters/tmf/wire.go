package tmf

import "github.com/nfvsec/nmtd/internal/core/domain"

// TMF service-inventory wire shapes. Characteristic values nest one level
// deeper than the domain model: each list entry wraps a (value, alias) pair
// in a "value" object.

type wireValueAndAlias struct {
	Value string `json:"value"`
	Alias string `json:"alias,omitempty"`
}

type wireValue struct {
	Value wireValueAndAlias `json:"value"`
}

type wireCharacteristic struct {
	Name   string      `json:"name"`
	Values []wireValue `json:"serviceSpecCharacteristicValue"`
}

type wireService struct {
	UUID            string               `json:"uuid"`
	ID              string               `json:"id,omitempty"`
	Name            string               `json:"name"`
	State           string               `json:"state"`
	ServiceOrderID  string               `json:"serviceOrderId"`
	Characteristics []wireCharacteristic `json:"serviceCharacteristic"`
}

type wirePatch struct {
	ServiceCharacteristic []wireCharacteristic `json:"serviceCharacteristic"`
}

type orderItemService struct {
	UUID string `json:"uuid"`
}

type orderItemPatch struct {
	Action  string           `json:"action"`
	Service orderItemService `json:"service"`
}

type orderPatch struct {
	OrderItems []orderItemPatch `json:"orderItem"`
}

func (ws wireService) toDomain() domain.ServiceInstance {
	id := ws.UUID
	if id == "" {
		id = ws.ID
	}
	chars := make([]domain.Characteristic, 0, len(ws.Characteristics))
	for _, wc := range ws.Characteristics {
		values := make([]domain.CharacteristicValue, 0, len(wc.Values))
		for _, wv := range wc.Values {
			values = append(values, domain.CharacteristicValue{
				Value: wv.Value.Value,
				Alias: wv.Value.Alias,
			})
		}
		chars = append(chars, domain.Characteristic{Name: wc.Name, Values: values})
	}
	return domain.ServiceInstance{
		ID:              id,
		Name:            ws.Name,
		State:           ws.State,
		ServiceOrderID:  ws.ServiceOrderID,
		Characteristics: chars,
	}
}

func fromDomain(c domain.Characteristic) wireCharacteristic {
	values := make([]wireValue, 0, len(c.Values))
	for _, v := range c.Values {
		values = append(values, wireValue{Value: wireValueAndAlias{Value: v.Value, Alias: v.Alias}})
	}
	return wireCharacteristic{Name: c.Name, Values: values}
}
