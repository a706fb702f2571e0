package inventory

import (
	"fmt"
	"sort"
)

// Registry holds all loaded weapon and armor definitions indexed by ID.
type Registry struct {
	weapons map[string]*WeaponDef
	armors  map[string]*ArmorDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		weapons: make(map[string]*WeaponDef),
		armors:  make(map[string]*ArmorDef),
	}
}

// RegisterWeapon adds w to the registry.
//
// Precondition:  w must not be nil.
// Postcondition: Weapon(w.ID) returns w; returns error if w.ID already registered.
func (r *Registry) RegisterWeapon(w *WeaponDef) error {
	if _, exists := r.weapons[w.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterWeapon: weapon ID %q already registered", w.ID)
	}
	r.weapons[w.ID] = w
	return nil
}

// RegisterArmor adds a to the registry.
//
// Precondition:  a must not be nil.
// Postcondition: Armor(a.ID) returns a; returns error if a.ID already registered.
func (r *Registry) RegisterArmor(a *ArmorDef) error {
	if _, exists := r.armors[a.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterArmor: armor ID %q already registered", a.ID)
	}
	r.armors[a.ID] = a
	return nil
}

// Weapon returns the WeaponDef for the given id, or nil if not found.
func (r *Registry) Weapon(id string) *WeaponDef {
	return r.weapons[id]
}

// Armor returns the ArmorDef for the given id, or nil if not found.
func (r *Registry) Armor(id string) *ArmorDef {
	return r.armors[id]
}

// AllWeapons returns all registered WeaponDefs ordered by ID.
func (r *Registry) AllWeapons() []*WeaponDef {
	out := make([]*WeaponDef, 0, len(r.weapons))
	for _, w := range r.weapons {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Resolve translates carried item IDs into a Loadout. The first ID naming a
// weapon becomes the active weapon and the first naming armor becomes the
// active armor. Unknown IDs are ignored.
//
// Postcondition: always returns a usable Loadout; slots with no match hold
// the unarmed/unarmored defaults and are listed in Defaulted.
func (r *Registry) Resolve(items []string) Loadout {
	out := DefaultLoadout()
	out.Defaulted = nil
	var haveWeapon, haveArmor bool
	for _, id := range items {
		if w, ok := r.weapons[id]; ok && !haveWeapon {
			out.Weapon = profileOf(w)
			haveWeapon = true
		}
		if a, ok := r.armors[id]; ok && !haveArmor {
			out.Armor = ArmorProfile{ID: a.ID, Name: a.Name, Attribute: a.DefendingAttribute(), Skill: a.Skill}
			haveArmor = true
		}
	}
	if !haveWeapon {
		out.Defaulted = append(out.Defaulted, "weapon")
	}
	if !haveArmor {
		out.Defaulted = append(out.Defaulted, "armor")
	}
	return out
}

// OptimalRange returns the maximum range in cells among the carried items
// that resolve to weapons.
//
// Postcondition: Returns MeleeRange when no item is a weapon.
func (r *Registry) OptimalRange(items []string) float64 {
	best := MeleeRange
	for _, id := range items {
		if w, ok := r.weapons[id]; ok && w.Range() > best {
			best = w.Range()
		}
	}
	return best
}

// LoadRegistry loads weapons from weaponsDir and armor from armorDir into a
// new Registry. An empty directory argument is skipped.
//
// Postcondition: Returns a populated Registry or the first load error.
func LoadRegistry(weaponsDir, armorDir string) (*Registry, error) {
	reg := NewRegistry()
	if weaponsDir != "" {
		weapons, err := LoadWeapons(weaponsDir)
		if err != nil {
			return nil, err
		}
		for _, w := range weapons {
			if err := reg.RegisterWeapon(w); err != nil {
				return nil, err
			}
		}
	}
	if armorDir != "" {
		armors, err := LoadArmors(armorDir)
		if err != nil {
			return nil, err
		}
		for _, a := range armors {
			if err := reg.RegisterArmor(a); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}
