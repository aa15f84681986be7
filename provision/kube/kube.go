// Package kube provisions skyshade workers as Kubernetes pods
package kube

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-sif/skyshade/provision"
	uuid "github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/yaml"
)

// Labels applied to every worker pod
const (
	ManagedByLabel = "app.kubernetes.io/managed-by"
	ManagedByValue = "skyshade"
	ClusterLabel   = "skyshade/cluster"
)

// Config configures a Provisioner
type Config struct {
	Namespace    string              // namespace in which to create worker pods
	Prefix       string              // worker pods are named <Prefix>-worker-<i>
	ClusterID    string              // value of the skyshade/cluster label. Generated if empty.
	Template     *corev1.Pod         // [REQUIRED] worker pod template
	Env          provision.WorkerEnv // environment appended to every container
	PollInterval time.Duration       // how often WaitRunning checks pod phases
}

// Provisioner creates worker pods from a template, and deletes them by label
type Provisioner struct {
	client kubernetes.Interface
	cfg    Config
	lock   sync.Mutex
	pods   []string
}

// LoadTemplate reads a worker pod template from a YAML (or JSON) file
func LoadTemplate(path string) (*corev1.Pod, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read worker template: %w", err)
	}
	return ParseTemplate(buf)
}

// ParseTemplate parses a worker pod template. Templates must describe a Pod with at least one container.
func ParseTemplate(buf []byte) (*corev1.Pod, error) {
	pod := &corev1.Pod{}
	if err := yaml.UnmarshalStrict(buf, pod); err != nil {
		return nil, fmt.Errorf("unable to parse worker template: %w", err)
	}
	if pod.Kind != "" && pod.Kind != "Pod" {
		return nil, fmt.Errorf("worker template must describe a Pod, not a %s", pod.Kind)
	}
	if len(pod.Spec.Containers) == 0 {
		return nil, fmt.Errorf("worker template must define at least one container")
	}
	return pod, nil
}

// NewClientset builds a Kubernetes clientset from a kubeconfig file, or from the
// in-cluster service account when kubeconfig is empty
func NewClientset(kubeconfig string) (kubernetes.Interface, error) {
	var restConfig *rest.Config
	var err error
	if len(kubeconfig) > 0 {
		restConfig, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	} else {
		restConfig, err = rest.InClusterConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("unable to configure kubernetes client: %w", err)
	}
	return kubernetes.NewForConfig(restConfig)
}

// New creates a Provisioner
func New(client kubernetes.Interface, cfg Config) (*Provisioner, error) {
	if cfg.Template == nil {
		return nil, fmt.Errorf("a worker template is required")
	}
	if len(cfg.Namespace) == 0 {
		cfg.Namespace = metav1.NamespaceDefault
	}
	if len(cfg.Prefix) == 0 {
		cfg.Prefix = "skyshade"
	}
	if len(cfg.ClusterID) == 0 {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("failed to generate UUID: %w", err)
		}
		cfg.ClusterID = id.String()
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Provisioner{client: client, cfg: cfg}, nil
}

// ClusterID returns the value of the skyshade/cluster label on this Provisioner's pods
func (p *Provisioner) ClusterID() string {
	return p.cfg.ClusterID
}

func (p *Provisioner) selector() string {
	return labels.SelectorFromSet(labels.Set{
		ManagedByLabel: ManagedByValue,
		ClusterLabel:   p.cfg.ClusterID,
	}).String()
}

// workerPod builds the i-th worker pod from the template
func (p *Provisioner) workerPod(i int) *corev1.Pod {
	pod := p.cfg.Template.DeepCopy()
	pod.Kind = ""
	pod.APIVersion = ""
	pod.Name = fmt.Sprintf("%s-worker-%d", p.cfg.Prefix, i)
	pod.GenerateName = ""
	pod.Namespace = p.cfg.Namespace
	if pod.Labels == nil {
		pod.Labels = make(map[string]string)
	}
	pod.Labels[ManagedByLabel] = ManagedByValue
	pod.Labels[ClusterLabel] = p.cfg.ClusterID
	if len(pod.Spec.RestartPolicy) == 0 {
		pod.Spec.RestartPolicy = corev1.RestartPolicyNever
	}
	env := make([]corev1.EnvVar, 0)
	for _, v := range p.cfg.Env.Vars() {
		env = append(env, corev1.EnvVar{Name: v.Name, Value: v.Value})
	}
	for c := range pod.Spec.Containers {
		pod.Spec.Containers[c].Env = append(pod.Spec.Containers[c].Env, env...)
	}
	return pod
}

// Provision creates n worker pods
func (p *Provisioner) Provision(ctx context.Context, n int) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	for i := 0; i < n; i++ {
		pod, err := p.client.CoreV1().Pods(p.cfg.Namespace).Create(ctx, p.workerPod(i), metav1.CreateOptions{})
		if err != nil {
			return fmt.Errorf("unable to create worker pod %d: %w", i, err)
		}
		p.pods = append(p.pods, pod.Name)
	}
	log.Printf("Requested %d worker pods in namespace %s (cluster %s)", n, p.cfg.Namespace, p.cfg.ClusterID)
	return nil
}

// WaitRunning blocks until every provisioned pod is Running. A pod which fails or
// exits before the cluster starts is an error.
func (p *Provisioner) WaitRunning(ctx context.Context) error {
	expected := len(p.Workers())
	return wait.PollUntilContextCancel(ctx, p.cfg.PollInterval, true, func(ctx context.Context) (bool, error) {
		pods, err := p.client.CoreV1().Pods(p.cfg.Namespace).List(ctx, metav1.ListOptions{LabelSelector: p.selector()})
		if err != nil {
			return false, err
		}
		running := 0
		for _, pod := range pods.Items {
			switch pod.Status.Phase {
			case corev1.PodRunning:
				running++
			case corev1.PodFailed, corev1.PodSucceeded:
				return false, fmt.Errorf("worker pod %s exited (%s): %s", pod.Name, pod.Status.Phase, pod.Status.Message)
			}
		}
		return running >= expected, nil
	})
}

// Teardown deletes every pod carrying this Provisioner's cluster label
func (p *Provisioner) Teardown(ctx context.Context) error {
	pods, err := p.client.CoreV1().Pods(p.cfg.Namespace).List(ctx, metav1.ListOptions{LabelSelector: p.selector()})
	if err != nil {
		return fmt.Errorf("unable to list worker pods: %w", err)
	}
	var errs *multierror.Error
	for _, pod := range pods.Items {
		err := p.client.CoreV1().Pods(p.cfg.Namespace).Delete(ctx, pod.Name, metav1.DeleteOptions{})
		if err != nil && !apierrors.IsNotFound(err) {
			errs = multierror.Append(errs, fmt.Errorf("unable to delete worker pod %s: %w", pod.Name, err))
		}
	}
	p.lock.Lock()
	p.pods = nil
	p.lock.Unlock()
	log.Printf("Deleted %d worker pods (cluster %s)", len(pods.Items), p.cfg.ClusterID)
	return errs.ErrorOrNil()
}

// Workers returns the names of the pods created by this Provisioner
func (p *Provisioner) Workers() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	res := make([]string, len(p.pods))
	copy(res, p.pods)
	return res
}
