package clientconfig

// Merge applies patch on top of current and returns a new configuration.
//
// Objects merge key by key, arrays and scalars replace, and an explicit null
// resets the field to its empty value. Version and ClientID are never taken
// from the patch. Neither input is modified.
func Merge(current ClientConfiguration, patch *Patch) ClientConfiguration {
	out := current.Clone()
	if patch == nil {
		return out
	}
	if patch.Client.Set {
		if patch.Client.Null {
			out.Client = ClientInfo{}
		} else {
			out.Client = mergeClient(out.Client, patch.Client.Value)
		}
	}
	if patch.Channels.Set {
		if patch.Channels.Null {
			out.Channels = Channels{}
		} else {
			out.Channels = mergeChannels(out.Channels, patch.Channels.Value)
		}
	}
	if patch.People.Set {
		if patch.People.Null {
			out.People = People{}
		} else {
			replaceField(&out.People.Managers, patch.People.Value.Managers)
		}
	}
	replaceField(&out.Suppliers, patch.Suppliers)
	if patch.Signature.Set {
		if patch.Signature.Null {
			out.Signature = Signature{}
		} else {
			out.Signature = mergeSignature(out.Signature, patch.Signature.Value)
		}
	}
	if patch.AI.Set {
		if patch.AI.Null {
			out.AI = AISettings{}
		} else {
			out.AI = mergeAI(out.AI, patch.AI.Value)
		}
	}
	return out
}

func replaceField[T any](dst *T, f Field[T]) {
	if !f.Set {
		return
	}
	if f.Null {
		var zero T
		*dst = zero
		return
	}
	*dst = f.Value
}

func mergeClient(cur ClientInfo, p ClientInfoPatch) ClientInfo {
	replaceField(&cur.Name, p.Name)
	replaceField(&cur.Timezone, p.Timezone)
	replaceField(&cur.Website, p.Website)
	replaceField(&cur.Phones, p.Phones)
	replaceField(&cur.Address, p.Address)
	if p.Hours.Set {
		if p.Hours.Null {
			cur.Hours = map[string]string{}
		} else {
			cur.Hours = mergeHours(cur.Hours, p.Hours.Value)
		}
	}
	return cur
}

func mergeHours(cur map[string]string, p map[string]Field[string]) map[string]string {
	out := make(map[string]string, len(cur)+len(p))
	for k, v := range cur {
		out[k] = v
	}
	for k, f := range p {
		if f.Null {
			delete(out, k)
			continue
		}
		out[k] = f.Value
	}
	return out
}

func mergeChannels(cur Channels, p ChannelsPatch) Channels {
	if !p.Email.Set {
		return cur
	}
	if p.Email.Null {
		return Channels{}
	}
	email := cur.Email
	replaceField(&email.Provider, p.Email.Value.Provider)
	if lm := p.Email.Value.LabelMap; lm.Set {
		if lm.Null {
			email.LabelMap = LabelMap{}
		} else {
			email.LabelMap = lm.Value.Apply(email.LabelMap)
		}
	}
	cur.Email = email
	return cur
}

func mergeSignature(cur Signature, p SignaturePatch) Signature {
	replaceField(&cur.Mode, p.Mode)
	if p.CustomText.Set {
		if p.CustomText.Null {
			cur.CustomText = nil
		} else {
			cur.CustomText = StringPtr(p.CustomText.Value)
		}
	}
	replaceField(&cur.BlockNamesInSignature, p.BlockNamesInSignature)
	return cur
}

func mergeAI(cur AISettings, p AIPatch) AISettings {
	replaceField(&cur.Model, p.Model)
	replaceField(&cur.Temperature, p.Temperature)
	replaceField(&cur.MaxTokens, p.MaxTokens)
	replaceField(&cur.Locked, p.Locked)
	return cur
}
