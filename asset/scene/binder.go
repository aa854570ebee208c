package scene

import "github.com/achilleasa/meshimport/log"

var binderLogger = log.New("scene binder")

// Bind a mesh to an optional skeleton. Every vertex group is matched
// against the skeleton bones, first by bone identifier and then by bone
// name. Groups without a matching bone are kept as unbound bindings.
func Bind(mesh *Mesh, skel *Skeleton) *Scene {
	sc := &Scene{
		Mesh:     mesh,
		Skeleton: skel,
	}
	if mesh == nil {
		return sc
	}

	sc.Bindings = make([]Binding, 0, len(mesh.VertexGroups))
	for _, group := range mesh.VertexGroups {
		var bone *Bone
		if skel != nil {
			if bone = skel.FindByID(group.Name); bone == nil {
				bone = skel.Find(group.Name)
			}
		}
		sc.Bindings = append(sc.Bindings, Binding{Group: group.Name, Bone: bone})
	}

	if skel != nil {
		unbound := len(sc.Bindings) - sc.BoundGroups()
		if unbound > 0 {
			binderLogger.Warningf("%d of %d vertex groups of %q have no matching bone in %q", unbound, len(sc.Bindings), mesh.Name, skel.Name)
		} else {
			binderLogger.Infof("bound %d vertex groups of %q to %q", len(sc.Bindings), mesh.Name, skel.Name)
		}
	}
	return sc
}
